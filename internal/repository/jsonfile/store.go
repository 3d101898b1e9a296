// Package jsonfile persists the task list as a single JSON document.
//
// The file is an array of records, indented with four spaces:
//
//	[
//	    {
//	        "Task": "Buy milk",
//	        "Due Date": "2025-06-01",
//	        "Priority": "Low",
//	        "Status": "Pending"
//	    }
//	]
//
// Every save rewrites the whole file in place. Writes are not atomic and
// the file is not locked, so two processes sharing it race and the last
// writer wins.
package jsonfile

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"task-manager/internal/domain"
	"task-manager/internal/errors"
	"task-manager/internal/repository"
)

//go:embed tasks.schema.json
var schemaDocument string

const schemaURL = "tasks.schema.json"

// DefaultFilename is the name of the persisted file when none is configured.
const DefaultFilename = "tasks.json"

// Store reads and writes the task list to a JSON file.
type Store struct {
	path   string
	perm   os.FileMode
	schema *jsonschema.Schema
}

var _ repository.Store = (*Store)(nil)

// Option customizes a Store.
type Option func(*Store)

// WithFileMode sets the permissions used when the file is created.
func WithFileMode(perm os.FileMode) Option {
	return func(s *Store) {
		if perm != 0 {
			s.perm = perm
		}
	}
}

// New creates a store for path. The file does not need to exist.
func New(path string, opts ...Option) (*Store, error) {
	if path == "" {
		return nil, errors.NewInvalidInputError("path", path, "tasks file path cannot be empty")
	}

	schema, err := compileSchema()
	if err != nil {
		return nil, fmt.Errorf("compile tasks schema: %w", err)
	}

	s := &Store{
		path:   path,
		perm:   0644,
		schema: schema,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func compileSchema() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	compiler.AssertFormat = true
	if err := compiler.AddResource(schemaURL, strings.NewReader(schemaDocument)); err != nil {
		return nil, err
	}
	return compiler.Compile(schemaURL)
}

// Path returns the file the store reads and writes.
func (s *Store) Path() string {
	return s.path
}

// Load reads the file. A missing file is not an error and loads as nil.
// Malformed JSON or records that violate the schema fail with a parse error.
func (s *Store) Load(ctx context.Context) ([]domain.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		if os.IsPermission(err) {
			return nil, errors.NewPermissionError("read", s.path)
		}
		return nil, errors.NewStorageError("read "+s.path, err)
	}

	var document any
	if err := json.Unmarshal(data, &document); err != nil {
		return nil, errors.NewParseError("tasks file", s.path, err)
	}

	if err := s.schema.Validate(document); err != nil {
		return nil, errors.NewParseError("tasks file", s.path, schemaError(err))
	}

	var records []domain.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, errors.NewParseError("tasks file", s.path, err)
	}
	return records, nil
}

// Save overwrites the file with records.
func (s *Store) Save(ctx context.Context, records []domain.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if records == nil {
		records = []domain.Record{}
	}

	data, err := Encode(records)
	if err != nil {
		return errors.NewStorageError("encode tasks", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.NewStorageError("create directory "+dir, err)
		}
	}

	if err := os.WriteFile(s.path, data, s.perm); err != nil {
		if os.IsPermission(err) {
			return errors.NewPermissionError("write", s.path)
		}
		return errors.NewStorageError("write "+s.path, err)
	}
	return nil
}

// Close is a no-op; the file is opened only for the duration of each call.
func (s *Store) Close() error {
	return nil
}

// Encode renders records exactly as they are written to disk:
// four-space indentation, no HTML escaping, trailing newline.
func Encode(records []domain.Record) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(records); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// schemaError flattens a schema validation error into one error listing
// each failing location.
func schemaError(err error) error {
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return err
	}

	var messages []string
	collectSchemaErrors(ve, &messages)
	if len(messages) == 0 {
		return err
	}
	return fmt.Errorf("%s", strings.Join(messages, "; "))
}

func collectSchemaErrors(err *jsonschema.ValidationError, messages *[]string) {
	if len(err.Causes) == 0 {
		path := jsonPointerToPath(err.InstanceLocation)
		if path == "" {
			*messages = append(*messages, err.Message)
		} else {
			*messages = append(*messages, path+": "+err.Message)
		}
		return
	}
	for _, cause := range err.Causes {
		collectSchemaErrors(cause, messages)
	}
}

// jsonPointerToPath turns "/0/Due%20Date" (or "/0/Due Date") into "[0].Due Date".
func jsonPointerToPath(ptr string) string {
	ptr = strings.TrimPrefix(ptr, "#")
	ptr = strings.TrimPrefix(ptr, "/")
	if ptr == "" {
		return ""
	}

	path := ""
	for _, part := range strings.Split(ptr, "/") {
		if unescaped, err := url.PathUnescape(part); err == nil {
			part = unescaped
		}
		part = strings.ReplaceAll(part, "~1", "/")
		part = strings.ReplaceAll(part, "~0", "~")
		if part == "" {
			continue
		}
		if idx, err := strconv.Atoi(part); err == nil {
			path += fmt.Sprintf("[%d]", idx)
			continue
		}
		if path == "" {
			path = part
		} else {
			path += "." + part
		}
	}
	return path
}
