package db

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/balkashynov/classtimer/internal/models"
)

// KVStore is a string key/value store backed by the entries table
type KVStore struct {
	db *gorm.DB
}

// NewKVStore wraps an open connection; nil selects the package connection
func NewKVStore(db *gorm.DB) *KVStore {
	if db == nil {
		db = DB
	}
	return &KVStore{db: db}
}

// Get returns the value stored under key. A missing key is not an error.
func (s *KVStore) Get(key string) (string, bool, error) {
	var entry models.Entry

	err := s.db.Where("entry_key = ?", key).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read %q: %w", key, err)
	}

	return entry.Value, true, nil
}

// Set stores value under key, replacing any previous value
func (s *KVStore) Set(key, value string) error {
	entry := models.Entry{
		Key:       key,
		Value:     value,
		UpdatedAt: time.Now(),
	}

	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "entry_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return fmt.Errorf("write %q: %w", key, err)
	}

	return nil
}

// Delete removes key. Deleting a missing key succeeds.
func (s *KVStore) Delete(key string) error {
	if err := s.db.Where("entry_key = ?", key).Delete(&models.Entry{}).Error; err != nil {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	return nil
}
