package overrides

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/premiumkeeper/internal/client/migrations"
	"github.com/dmitrijs2005/premiumkeeper/internal/dbx"
	"github.com/dmitrijs2005/premiumkeeper/internal/filex"
	"github.com/dmitrijs2005/premiumkeeper/internal/premium"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

// SQLiteBackend stores one row per (company, plate).
type SQLiteBackend struct {
	db *sql.DB
}

func NewSQLiteBackend(db *sql.DB) *SQLiteBackend {
	return &SQLiteBackend{db: db}
}

func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	return goose.UpContext(ctx, db, ".")
}

// OpenSQLite opens (creating if needed) the database file at path and
// migrates it.
func OpenSQLite(ctx context.Context, path string) (*sql.DB, error) {
	if err := filex.EnsureParentDir(path); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate %s: %w", path, err)
	}
	return db, nil
}

func (b *SQLiteBackend) Load(ctx context.Context, company string) (map[string]premium.PlateOverride, error) {
	return load(ctx, b.db, company)
}

func load(ctx context.Context, db dbx.DBTX, company string) (map[string]premium.PlateOverride, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT plate, checked, premium, checked_at FROM overrides WHERE company = ?`, company)
	if err != nil {
		return nil, fmt.Errorf("failed to load overrides[%s]: %w", company, err)
	}
	defer rows.Close()

	result := map[string]premium.PlateOverride{}
	for rows.Next() {
		var (
			plate     string
			o         premium.PlateOverride
			checkedAt sql.NullString
		)
		if err := rows.Scan(&plate, &o.Checked, &o.Premium, &checkedAt); err != nil {
			return nil, fmt.Errorf("failed to scan override row: %w", err)
		}
		if checkedAt.Valid {
			ts, err := time.Parse(time.RFC3339Nano, checkedAt.String)
			if err != nil {
				return nil, fmt.Errorf("bad checked_at for %s/%s: %w", company, plate, err)
			}
			o.Timestamp = &ts
		}
		result[plate] = o
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate override rows: %w", err)
	}
	return result, nil
}

func (b *SQLiteBackend) Save(ctx context.Context, company string, m map[string]premium.PlateOverride) error {
	return dbx.WithTx(ctx, b.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return save(ctx, tx, company, m)
	})
}

func save(ctx context.Context, tx dbx.DBTX, company string, m map[string]premium.PlateOverride) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM overrides WHERE company = ?`, company); err != nil {
		return fmt.Errorf("failed to reset overrides[%s]: %w", company, err)
	}
	for plate, o := range m {
		var checkedAt any
		if o.Timestamp != nil {
			checkedAt = o.Timestamp.UTC().Format(time.RFC3339Nano)
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO overrides (company, plate, checked, premium, checked_at) VALUES (?, ?, ?, ?, ?)`,
			company, plate, o.Checked, o.Premium, checkedAt)
		if err != nil {
			return fmt.Errorf("failed to save override[%s/%s]: %w", company, plate, err)
		}
	}
	return nil
}

// SaveAll replaces several companies in one transaction.
func (b *SQLiteBackend) SaveAll(ctx context.Context, data map[string]map[string]premium.PlateOverride) error {
	return dbx.WithTx(ctx, b.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		for company, m := range data {
			if err := save(ctx, tx, company, m); err != nil {
				return err
			}
		}
		return nil
	})
}

func (b *SQLiteBackend) Companies(ctx context.Context) ([]string, error) {
	rows, err := b.db.QueryContext(ctx, `SELECT DISTINCT company FROM overrides ORDER BY company`)
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("failed to scan company: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (b *SQLiteBackend) Clear(ctx context.Context) error {
	if _, err := b.db.ExecContext(ctx, `DELETE FROM overrides`); err != nil {
		return fmt.Errorf("failed to clear overrides: %w", err)
	}
	return nil
}
