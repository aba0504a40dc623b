package db

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"launcher-core/logger"
)

// Direction tells whether a migration moves the schema forward or back.
type Direction int

const (
	Forward Direction = iota
	// Reverse steps are accepted in declarations but never applied.
	Reverse
)

func (d Direction) String() string {
	if d == Reverse {
		return "reverse"
	}
	return "forward"
}

// Migration is one versioned schema or seed change. SQL must be a single
// statement; it is executed together with its bookkeeping row in one
// transaction.
type Migration struct {
	Version     int64
	Description string
	SQL         string
	Direction   Direction
}

// Checksum identifies the statement text so edits to applied migrations are
// detected.
func (m Migration) Checksum() string {
	sum := sha256.Sum256([]byte(m.SQL))
	return hex.EncodeToString(sum[:])
}

// EnsureSchema applies every declared forward migration that has not been
// recorded yet, in ascending version order, and returns the versions it
// applied. The plan is validated before any statement runs: recorded
// versions must be exactly the first declared versions, with unchanged
// statements. Migrations are append-only.
func EnsureSchema(ctx context.Context, gdb *gorm.DB, declared []Migration, log *zap.SugaredLogger) ([]int64, error) {
	log = logger.OrNop(log)

	if err := gdb.WithContext(ctx).AutoMigrate(&SchemaMigration{}); err != nil {
		return nil, &MigrationError{Err: fmt.Errorf("create schema_migrations: %w", err)}
	}

	var recorded []SchemaMigration
	if err := gdb.WithContext(ctx).Order("version").Find(&recorded).Error; err != nil {
		return nil, &MigrationError{Err: fmt.Errorf("read applied migrations: %w", err)}
	}

	pending, err := planMigrations(declared, recorded)
	if err != nil {
		return nil, err
	}

	applied := make([]int64, 0, len(pending))
	for _, m := range pending {
		log.Infow("Applying migration", zap.Int64("version", m.Version), zap.String("description", m.Description))

		err := gdb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Exec(m.SQL).Error; err != nil {
				return err
			}
			return tx.Create(&SchemaMigration{
				Version:     m.Version,
				Description: m.Description,
				Checksum:    m.Checksum(),
				AppliedAt:   time.Now().UTC(),
			}).Error
		})
		if err != nil {
			log.Errorw("Migration failed", zap.Int64("version", m.Version), zap.Error(err))
			return applied, &MigrationError{Version: m.Version, Description: m.Description, Err: err}
		}
		applied = append(applied, m.Version)
	}

	return applied, nil
}

// planMigrations returns the forward migrations still to apply, sorted by
// version, or an error when the recorded history does not match the
// declarations.
func planMigrations(declared []Migration, recorded []SchemaMigration) ([]Migration, error) {
	forward := make([]Migration, 0, len(declared))
	seen := make(map[int64]bool, len(declared))
	for _, m := range declared {
		if m.Direction != Forward {
			continue
		}
		if m.Version <= 0 {
			return nil, &MigrationError{Version: m.Version, Description: m.Description, Err: fmt.Errorf("version must be positive")}
		}
		if seen[m.Version] {
			return nil, &MigrationError{Version: m.Version, Description: m.Description, Err: fmt.Errorf("version declared more than once")}
		}
		seen[m.Version] = true
		forward = append(forward, m)
	}
	sort.Slice(forward, func(i, j int) bool { return forward[i].Version < forward[j].Version })

	sort.Slice(recorded, func(i, j int) bool { return recorded[i].Version < recorded[j].Version })
	if len(recorded) > len(forward) {
		extra := recorded[len(forward)]
		return nil, &MigrationError{Version: extra.Version, Description: extra.Description, Err: fmt.Errorf("applied migration is not declared")}
	}

	for i, r := range recorded {
		m := forward[i]
		if r.Version != m.Version {
			if seen[r.Version] {
				return nil, &MigrationError{Version: m.Version, Description: m.Description, Err: fmt.Errorf("declared migration was skipped while version %d is applied", r.Version)}
			}
			return nil, &MigrationError{Version: r.Version, Description: r.Description, Err: fmt.Errorf("applied migration is not declared")}
		}
		if r.Checksum != m.Checksum() {
			return nil, &MigrationError{Version: m.Version, Description: m.Description, Err: fmt.Errorf("statement changed after it was applied")}
		}
	}

	return forward[len(recorded):], nil
}
