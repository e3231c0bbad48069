package store

import (
	"context"
	"errors"
	"time"

	"github.com/anjiri1684/tutor_connect/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormBackend keeps each collection in one row of the collections table.
type GormBackend struct {
	db *gorm.DB
}

func NewGormBackend(db *gorm.DB) *GormBackend {
	return &GormBackend{db: db}
}

// EnsureCollections creates an empty row for every collection so that
// Update always has a row to lock.
func (g *GormBackend) EnsureCollections(ctx context.Context) error {
	for _, key := range AllKeys {
		rec := models.CollectionRecord{Key: key, Data: []byte("[]"), UpdatedAt: time.Now()}
		err := g.db.WithContext(ctx).
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(&rec).Error
		if err != nil {
			return err
		}
	}
	return nil
}

func (g *GormBackend) Read(ctx context.Context, key string) ([]byte, error) {
	var rec models.CollectionRecord
	err := g.db.WithContext(ctx).First(&rec, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rec.Data, nil
}

func (g *GormBackend) Update(ctx context.Context, key string, fn func([]byte) ([]byte, error)) error {
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rec models.CollectionRecord
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&rec, "key = ?", key).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		next, err := fn(rec.Data)
		if err != nil {
			return err
		}

		rec.Key = key
		rec.Data = next
		rec.UpdatedAt = time.Now()
		return tx.Save(&rec).Error
	})
}
