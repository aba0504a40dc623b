package db

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"launcher-core/logger"
)

// Store is the record store shared by every component. It owns the single
// connection pool; each operation holds mu for the duration of its query,
// so database access is serialized.
type Store struct {
	db  *gorm.DB
	mu  sync.Mutex
	log *zap.SugaredLogger
}

// NewStore wraps an opened and migrated database.
func NewStore(gdb *gorm.DB, log *zap.SugaredLogger) *Store {
	return &Store{db: gdb, log: logger.OrNop(log)}
}

// Close closes the underlying pool.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// conn locks the store and returns a session bound to ctx. Callers must
// call the returned release func.
func (s *Store) conn(ctx context.Context) (*gorm.DB, func()) {
	s.mu.Lock()
	return s.db.WithContext(ctx), s.mu.Unlock
}

// deleteWhere removes rows of model matching the condition and reports
// whether anything was removed.
func (s *Store) deleteWhere(ctx context.Context, op string, model interface{}, query string, args ...interface{}) (bool, error) {
	tx, release := s.conn(ctx)
	defer release()

	res := tx.Where(query, args...).Delete(model)
	if res.Error != nil {
		return false, classify(op, res.Error)
	}
	return res.RowsAffected >= 1, nil
}

// updateColumn sets one column on the row with the given id. A missing row is
// reported as ErrNotFound.
func (s *Store) updateColumn(ctx context.Context, op string, model interface{}, id interface{}, column string, value interface{}) error {
	tx, release := s.conn(ctx)
	defer release()

	res := tx.Model(model).Where("id = ?", id).Update(column, value)
	if res.Error != nil {
		return classify(op, res.Error)
	}
	if res.RowsAffected == 0 {
		return classify(op, gorm.ErrRecordNotFound)
	}
	return nil
}

// exists reports whether a row of model with the given id exists.
func (s *Store) exists(ctx context.Context, model interface{}, id string) (bool, error) {
	tx, release := s.conn(ctx)
	defer release()

	var count int64
	if err := tx.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
