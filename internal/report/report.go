// Package report exports the task listing as CSV, JSON or PDF.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"task-manager/internal/domain"
	"task-manager/internal/errors"
	"task-manager/internal/repository/jsonfile"
)

// Format is an export format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatPDF  Format = "pdf"
)

// Formats returns the supported export formats.
func Formats() []Format {
	return []Format{FormatCSV, FormatJSON, FormatPDF}
}

// ParseFormat converts a user-supplied format name. Matching ignores case.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case FormatCSV, FormatJSON, FormatPDF:
		return f, nil
	}
	return "", errors.NewInvalidInputError("format", s, "supported formats: csv, json, pdf")
}

// Extension returns the conventional file extension, dot included.
func (f Format) Extension() string {
	return "." + string(f)
}

// Header is the column order shared by every format.
var Header = []string{"Task", "Due Date", "Priority", "Status"}

// Write renders records in format to w. generated is stamped on the PDF.
func Write(w io.Writer, format Format, records []domain.Record, generated time.Time) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, records)
	case FormatJSON:
		return WriteJSON(w, records)
	case FormatPDF:
		return WritePDF(w, records, generated)
	default:
		return errors.NewInvalidInputError("format", string(format), "supported formats: csv, json, pdf")
	}
}

// WriteCSV writes a header row followed by one row per record.
func WriteCSV(w io.Writer, records []domain.Record) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(Header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, r := range records {
		if err := writer.Write([]string{r.Task, r.DueDate, r.Priority, r.Status}); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteJSON writes records byte-for-byte as the task file stores them.
func WriteJSON(w io.Writer, records []domain.Record) error {
	if records == nil {
		records = []domain.Record{}
	}
	data, err := jsonfile.Encode(records)
	if err != nil {
		return fmt.Errorf("failed to encode tasks: %w", err)
	}
	_, err = w.Write(data)
	return err
}

// column widths in mm; they sum to the A4 printable width with 10mm margins
var pdfColumns = []float64{100, 30, 25, 35}

// WritePDF renders a titled, bordered table of records.
func WritePDF(w io.Writer, records []domain.Record, generated time.Time) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.SetCreationDate(generated)
	pdf.SetTitle("Tasks", true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(40, 10, "Tasks")
	pdf.Ln(10)

	pdf.SetFont("Arial", "", 9)
	pdf.Cell(40, 6, fmt.Sprintf("Generated %s - %d task(s)", generated.Format("2006-01-02 15:04"), len(records)))
	pdf.Ln(10)

	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	for i, title := range Header {
		pdf.CellFormat(pdfColumns[i], 7, title, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 10)
	for _, r := range records {
		for i, value := range []string{r.Task, r.DueDate, r.Priority, r.Status} {
			text := fitText(pdf, tr(value), pdfColumns[i]-2)
			pdf.CellFormat(pdfColumns[i], 7, text, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to render PDF: %w", err)
	}
	return nil
}

// fitText shortens s with a trailing "..." until it fits in width. s is
// already in the single-byte font encoding, so trimming bytes is safe.
func fitText(pdf *gofpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}
	for n := len(s) - 1; n > 0; n-- {
		candidate := s[:n] + "..."
		if pdf.GetStringWidth(candidate) <= width {
			return candidate
		}
	}
	return ""
}
