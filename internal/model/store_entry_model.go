package model

import "time"

// StoreEntry is the durable key-value row backing the persistent store.
type StoreEntry struct {
	Key       string `gorm:"primaryKey;size:512"`
	Value     string `gorm:"type:text"`
	UpdatedAt time.Time
}

func (StoreEntry) TableName() string {
	return "store_entries"
}
