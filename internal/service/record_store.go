package service

import (
	"errors"

	"gradecalc/internal/model"
)

var ErrStudentNotFound = errors.New("student not found")

// RecordStore holds the records of one session in insertion order.
type RecordStore interface {
	Append(record model.StudentRecord) error
	Records() ([]model.StudentRecord, error)
	// FindByName returns the first inserted record whose name equals name
	// exactly, or ErrStudentNotFound.
	FindByName(name string) (model.StudentRecord, error)
	// Names returns each distinct name once, in first-insertion order.
	Names() ([]string, error)
	// Clear drops every record. Only session teardown calls it.
	Clear() error
}

// MemoryStore is an append-only slice. It is owned by a single session and
// does no locking of its own; the session serializes access.
type MemoryStore struct {
	records []model.StudentRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Append(record model.StudentRecord) error {
	s.records = append(s.records, record)
	return nil
}

func (s *MemoryStore) Records() ([]model.StudentRecord, error) {
	return s.records, nil
}

func (s *MemoryStore) FindByName(name string) (model.StudentRecord, error) {
	for i := range s.records {
		if s.records[i].Name == name {
			return s.records[i], nil
		}
	}
	return model.StudentRecord{}, ErrStudentNotFound
}

func (s *MemoryStore) Names() ([]string, error) {
	return distinctNames(s.records), nil
}

func (s *MemoryStore) Clear() error {
	s.records = nil
	return nil
}

func distinctNames(records []model.StudentRecord) []string {
	seen := make(map[string]bool, len(records))
	names := make([]string, 0, len(records))
	for _, r := range records {
		if seen[r.Name] {
			continue
		}
		seen[r.Name] = true
		names = append(names, r.Name)
	}
	return names
}
