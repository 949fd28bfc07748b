package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"gradecalc/internal/model"
)

// GormStore keeps one session's records in the session_records table.
// Rows are scoped by session id and ordered by their auto-increment id.
type GormStore struct {
	db        *gorm.DB
	sessionID string
}

func NewGormStore(db *gorm.DB, sessionID string) *GormStore {
	return &GormStore{db: db, sessionID: sessionID}
}

func (s *GormStore) scoped() *gorm.DB {
	return s.db.Model(&model.SessionRecord{}).Where("session_id = ?", s.sessionID)
}

func (s *GormStore) Append(record model.StudentRecord) error {
	row := model.NewSessionRecord(s.sessionID, record)
	if err := s.db.Create(&row).Error; err != nil {
		return fmt.Errorf("append student %q: %w", record.Name, err)
	}
	return nil
}

func (s *GormStore) Records() ([]model.StudentRecord, error) {
	var rows []model.SessionRecord
	if err := s.scoped().Order("id asc").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}

	records := make([]model.StudentRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.StudentRecord())
	}
	return records, nil
}

func (s *GormStore) FindByName(name string) (model.StudentRecord, error) {
	var row model.SessionRecord
	err := s.scoped().Where("name = ?", name).Order("id asc").First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.StudentRecord{}, ErrStudentNotFound
	}
	if err != nil {
		return model.StudentRecord{}, fmt.Errorf("find student %q: %w", name, err)
	}
	return row.StudentRecord(), nil
}

func (s *GormStore) Names() ([]string, error) {
	var rows []model.SessionRecord
	if err := s.scoped().Select("name", "id").Order("id asc").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list student names: %w", err)
	}

	records := make([]model.StudentRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, model.StudentRecord{Name: row.Name})
	}
	return distinctNames(records), nil
}

func (s *GormStore) Clear() error {
	err := s.db.Where("session_id = ?", s.sessionID).Delete(&model.SessionRecord{}).Error
	if err != nil {
		return fmt.Errorf("clear session %s: %w", s.sessionID, err)
	}
	return nil
}
