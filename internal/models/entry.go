package models

import "time"

// Entry is one key/value pair in the local store.
// Settings, the in-flight timer session and UI preferences each live under their own key.
type Entry struct {
	Key       string    `gorm:"primaryKey;column:entry_key" json:"key"`
	Value     string    `gorm:"not null" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}
