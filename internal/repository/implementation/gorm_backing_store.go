package implementation

import (
	"context"
	"errors"

	"note-editor-be/internal/mapper"
	"note-editor-be/internal/model"
	"note-editor-be/internal/repository/contract"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GormBackingStore struct {
	db     *gorm.DB
	mapper *mapper.StoreEntryMapper
}

func NewGormBackingStore(db *gorm.DB) contract.BackingStore {
	return &GormBackingStore{
		db:     db,
		mapper: mapper.NewStoreEntryMapper(),
	}
}

func (r *GormBackingStore) Get(ctx context.Context, key string) (string, bool, error) {
	var m model.StoreEntry
	if err := r.db.WithContext(ctx).First(&m, "key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	return r.mapper.ToValue(&m), true, nil
}

func (r *GormBackingStore) Set(ctx context.Context, key, value string) error {
	m := r.mapper.ToModel(key, value)
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(m).Error
}

func (r *GormBackingStore) Delete(ctx context.Context, key string) error {
	return r.db.WithContext(ctx).Delete(&model.StoreEntry{}, "key = ?", key).Error
}
