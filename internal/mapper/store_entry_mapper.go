package mapper

import (
	"note-editor-be/internal/model"
)

type StoreEntryMapper struct{}

func NewStoreEntryMapper() *StoreEntryMapper {
	return &StoreEntryMapper{}
}

func (m *StoreEntryMapper) ToModel(key, value string) *model.StoreEntry {
	return &model.StoreEntry{
		Key:   key,
		Value: value,
	}
}

func (m *StoreEntryMapper) ToValue(entry *model.StoreEntry) string {
	if entry == nil {
		return ""
	}
	return entry.Value
}
