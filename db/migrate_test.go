package db

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, created, err := Open(filepath.Join(t.TempDir(), "nested", "storage.db"), zap.NewNop().Sugar())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if !created {
		t.Errorf("Open() created = false on a fresh path")
	}
	t.Cleanup(func() { closeGorm(gdb) })
	return gdb
}

func appliedVersions(t *testing.T, gdb *gorm.DB) []int64 {
	t.Helper()
	var versions []int64
	if err := gdb.Model(&SchemaMigration{}).Order("version").Pluck("version", &versions).Error; err != nil {
		t.Fatalf("read schema_migrations: %v", err)
	}
	return versions
}

func tableExists(t *testing.T, gdb *gorm.DB, name string) bool {
	t.Helper()
	var count int64
	if err := gdb.Raw("SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = ?", name).Scan(&count).Error; err != nil {
		t.Fatalf("query sqlite_master: %v", err)
	}
	return count == 1
}

func TestEnsureSchemaFreshDatabase(t *testing.T) {
	ctx := context.Background()
	gdb := openTestDB(t)

	applied, err := EnsureSchema(ctx, gdb, Migrations, nil)
	if err != nil {
		t.Fatalf("EnsureSchema() error = %v", err)
	}

	want := []int64{1, 2, 4, 5, 6, 7, 8}
	if !reflect.DeepEqual(applied, want) {
		t.Errorf("applied = %v, want %v", applied, want)
	}
	if got := appliedVersions(t, gdb); !reflect.DeepEqual(got, want) {
		t.Errorf("recorded = %v, want %v", got, want)
	}
	for _, table := range []string{"repository", "manifest", "settings", "install"} {
		if !tableExists(t, gdb, table) {
			t.Errorf("table %s missing after migration", table)
		}
	}

	var count int64
	gdb.Model(&Settings{}).Count(&count)
	if count != 1 {
		t.Errorf("settings rows = %d, want 1", count)
	}
}

func TestEnsureSchemaIsIdempotent(t *testing.T) {
	ctx := context.Background()
	gdb := openTestDB(t)

	if _, err := EnsureSchema(ctx, gdb, Migrations, nil); err != nil {
		t.Fatalf("first EnsureSchema() error = %v", err)
	}
	for i := 0; i < 3; i++ {
		applied, err := EnsureSchema(ctx, gdb, Migrations, nil)
		if err != nil {
			t.Fatalf("EnsureSchema() run %d error = %v", i+2, err)
		}
		if len(applied) != 0 {
			t.Errorf("run %d applied %v, want nothing", i+2, applied)
		}
	}

	var count int64
	gdb.Model(&Settings{}).Count(&count)
	if count != 1 {
		t.Errorf("settings rows = %d after repeated runs, want 1", count)
	}
	if got := appliedVersions(t, gdb); len(got) != len(Migrations) {
		t.Errorf("recorded %d versions, want %d", len(got), len(Migrations))
	}
}

func TestEnsureSchemaDeclarationOrderIrrelevant(t *testing.T) {
	ctx := context.Background()
	gdb := openTestDB(t)

	shuffled := []Migration{Migrations[4], Migrations[0], Migrations[6], Migrations[2], Migrations[1], Migrations[5], Migrations[3]}
	applied, err := EnsureSchema(ctx, gdb, shuffled, nil)
	if err != nil {
		t.Fatalf("EnsureSchema() error = %v", err)
	}
	want := []int64{1, 2, 4, 5, 6, 7, 8}
	if !reflect.DeepEqual(applied, want) {
		t.Errorf("applied = %v, want %v", applied, want)
	}
}

func TestEnsureSchemaAppliesOnlyNewSteps(t *testing.T) {
	ctx := context.Background()
	gdb := openTestDB(t)

	if _, err := EnsureSchema(ctx, gdb, Migrations[:5], nil); err != nil {
		t.Fatalf("EnsureSchema() prefix error = %v", err)
	}
	applied, err := EnsureSchema(ctx, gdb, Migrations, nil)
	if err != nil {
		t.Fatalf("EnsureSchema() error = %v", err)
	}
	if want := []int64{7, 8}; !reflect.DeepEqual(applied, want) {
		t.Errorf("applied = %v, want %v", applied, want)
	}
}

func TestEnsureSchemaRejectsBadHistory(t *testing.T) {
	ctx := context.Background()

	edited := make([]Migration, len(Migrations))
	copy(edited, Migrations)
	edited[0].SQL = `CREATE TABLE repository ("id" TEXT PRIMARY KEY);`

	tests := []struct {
		name     string
		declared []Migration
	}{
		{"applied version no longer declared", Migrations[:3]},
		{"hole before an applied version", append([]Migration{Migrations[0], {Version: 3, Description: "late", SQL: "SELECT 1;"}}, Migrations[1:]...)},
		{"statement edited after apply", edited},
		{"duplicate version", append([]Migration{Migrations[0]}, Migrations...)},
		{"non-positive version", append([]Migration{{Version: 0, Description: "zero", SQL: "SELECT 1;"}}, Migrations...)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gdb := openTestDB(t)
			if _, err := EnsureSchema(ctx, gdb, Migrations, nil); err != nil {
				t.Fatalf("EnsureSchema() setup error = %v", err)
			}
			before := appliedVersions(t, gdb)

			applied, err := EnsureSchema(ctx, gdb, tt.declared, nil)
			if !errors.Is(err, ErrMigrationFailure) {
				t.Fatalf("EnsureSchema() error = %v, want ErrMigrationFailure", err)
			}
			var migErr *MigrationError
			if !errors.As(err, &migErr) {
				t.Errorf("error %T is not a *MigrationError", err)
			}
			if len(applied) != 0 {
				t.Errorf("applied = %v, want nothing executed", applied)
			}
			if after := appliedVersions(t, gdb); !reflect.DeepEqual(before, after) {
				t.Errorf("recorded versions changed from %v to %v", before, after)
			}
		})
	}
}

func TestEnsureSchemaStopsAtFailingStep(t *testing.T) {
	ctx := context.Background()
	gdb := openTestDB(t)

	declared := []Migration{
		{Version: 1, Description: "create_a", SQL: `CREATE TABLE a (id INTEGER PRIMARY KEY);`},
		{Version: 2, Description: "broken", SQL: `CREATE TABLE b (id INTEGER PRIMARY KEY`},
		{Version: 3, Description: "create_c", SQL: `CREATE TABLE c (id INTEGER PRIMARY KEY);`},
	}

	applied, err := EnsureSchema(ctx, gdb, declared, nil)
	var migErr *MigrationError
	if !errors.As(err, &migErr) || migErr.Version != 2 {
		t.Fatalf("EnsureSchema() error = %v, want failure at version 2", err)
	}
	if want := []int64{1}; !reflect.DeepEqual(applied, want) {
		t.Errorf("applied = %v, want %v", applied, want)
	}
	if got := appliedVersions(t, gdb); !reflect.DeepEqual(got, []int64{1}) {
		t.Errorf("recorded = %v, want [1]", got)
	}
	if tableExists(t, gdb, "c") {
		t.Errorf("step after the failure was applied")
	}
}

func TestEnsureSchemaIgnoresReverseSteps(t *testing.T) {
	ctx := context.Background()
	gdb := openTestDB(t)

	declared := []Migration{
		{Version: 1, Description: "create_a", SQL: `CREATE TABLE a (id INTEGER PRIMARY KEY);`},
		{Version: 1, Description: "drop_a", SQL: `DROP TABLE a;`, Direction: Reverse},
	}
	applied, err := EnsureSchema(ctx, gdb, declared, nil)
	if err != nil {
		t.Fatalf("EnsureSchema() error = %v", err)
	}
	if !reflect.DeepEqual(applied, []int64{1}) {
		t.Errorf("applied = %v, want [1]", applied)
	}
	if !tableExists(t, gdb, "a") {
		t.Errorf("reverse step was applied")
	}
}

func TestDirectionString(t *testing.T) {
	if Forward.String() != "forward" || Reverse.String() != "reverse" {
		t.Errorf("Direction strings = %q, %q", Forward, Reverse)
	}
}
