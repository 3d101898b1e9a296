package domain

// RecordMapper handles conversion between domain Tasks and their serialized Records.
type RecordMapper struct{}

// NewRecordMapper creates a new RecordMapper instance.
func NewRecordMapper() *RecordMapper {
	return &RecordMapper{}
}

// ToRecord converts a domain Task to a Record.
func (m *RecordMapper) ToRecord(task Task) Record {
	return task.Record()
}

// FromRecord converts a Record to a domain Task.
func (m *RecordMapper) FromRecord(record Record) (Task, error) {
	return FromRecord(record)
}

// ToRecordSlice converts a slice of domain Tasks to Records.
// The result is never nil so an empty list serializes as [].
func (m *RecordMapper) ToRecordSlice(tasks []Task) []Record {
	records := make([]Record, len(tasks))
	for i, task := range tasks {
		records[i] = m.ToRecord(task)
	}
	return records
}

// FromRecordSlice converts Records to domain Tasks, stopping at the first
// record that does not deserialize.
func (m *RecordMapper) FromRecordSlice(records []Record) ([]Task, error) {
	tasks := make([]Task, len(records))
	for i, record := range records {
		task, err := m.FromRecord(record)
		if err != nil {
			return nil, err
		}
		tasks[i] = task
	}
	return tasks, nil
}
