package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/anjiri1684/tutor_connect/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const selectForUpdate = `SELECT \* FROM "collections" WHERE key = \$1 .*FOR UPDATE`

func newMockGorm(t *testing.T) (*GormBackend, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return NewGormBackend(db), mock
}

func TestGormBackend_UpdateLocksAndCommits(t *testing.T) {
	b, mock := newMockGorm(t)

	mock.ExpectBegin()
	mock.ExpectQuery(selectForUpdate).
		WillReturnRows(sqlmock.NewRows([]string{"key", "data", "updated_at"}).AddRow("items", []byte(`[]`), time.Now()))
	mock.ExpectExec(`UPDATE "collections" SET`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := b.Update(context.Background(), "items", func(current []byte) ([]byte, error) {
		assert.JSONEq(t, `[]`, string(current))
		return []byte(`[{"id":"a","value":1}]`), nil
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormBackend_FailedUpdateRollsBack(t *testing.T) {
	b, mock := newMockGorm(t)

	mock.ExpectBegin()
	mock.ExpectQuery(selectForUpdate).
		WillReturnRows(sqlmock.NewRows([]string{"key", "data", "updated_at"}).AddRow("items", []byte(`[]`), time.Now()))
	mock.ExpectRollback()

	boom := errors.New("boom")
	err := b.Update(context.Background(), "items", func([]byte) ([]byte, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormBackend_LockFailureRollsBack(t *testing.T) {
	b, mock := newMockGorm(t)

	mock.ExpectBegin()
	mock.ExpectQuery(selectForUpdate).WillReturnError(errors.New("lock timeout"))
	mock.ExpectRollback()

	called := false
	err := b.Update(context.Background(), "items", func([]byte) ([]byte, error) {
		called = true
		return nil, nil
	})
	assert.ErrorContains(t, err, "lock timeout")
	assert.False(t, called)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestGormBackend_Postgres runs against a real database when
// TEST_DATABASE_URL is set.
func TestGormBackend_Postgres(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.CollectionRecord{}))

	key := "test_items"
	require.NoError(t, db.Where("key = ?", key).Delete(&models.CollectionRecord{}).Error)
	t.Cleanup(func() { db.Where("key = ?", key).Delete(&models.CollectionRecord{}) })

	b := NewGormBackend(db)
	c := NewCollection(b, key, func(i item) string { return i.ID })
	require.NoError(t, c.Append(ctx, item{ID: "seed"}))

	const writers = 20
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, c.Append(ctx, item{ID: fmt.Sprint(i), Value: i}))
		}(i)
	}
	wg.Wait()

	boom := errors.New("boom")
	assert.ErrorIs(t, c.Mutate(ctx, func([]item) ([]item, error) { return nil, boom }), boom)

	all, err := c.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, writers+1)
}
