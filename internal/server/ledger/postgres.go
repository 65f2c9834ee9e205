package ledger

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/premiumkeeper/internal/dbx"
	"github.com/dmitrijs2005/premiumkeeper/internal/premium"
	"github.com/dmitrijs2005/premiumkeeper/internal/server/migrations"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// PostgresRepository appends into the premiums table; seq keeps append order.
type PostgresRepository struct {
	db     dbx.DBTX
	closer func() error
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db, closer: func() error { return nil }}
}

// gooseUpContext is a seam for tests.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies the embedded schema.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, ".")
}

// OpenPostgres connects with pgx, migrates and returns a repository that
// owns the connection pool.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresRepository, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	r := NewPostgresRepository(db)
	r.closer = db.Close
	return r, nil
}

func (r *PostgresRepository) Append(ctx context.Context, rec premium.SubmissionRecord) error {
	query :=
		`INSERT INTO premiums (id, company, plate, premium, provision, submitted_at, user_email)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.ExecContext(ctx, query,
		rec.ID, rec.Company, rec.Plate, rec.Premium, rec.Commission, rec.Timestamp, rec.User)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]premium.SubmissionRecord, error) {
	query :=
		`SELECT id, company, plate, premium, provision, submitted_at, user_email
		 FROM premiums ORDER BY seq`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	records := []premium.SubmissionRecord{}
	for rows.Next() {
		var rec premium.SubmissionRecord
		if err := rows.Scan(&rec.ID, &rec.Company, &rec.Plate, &rec.Premium, &rec.Commission, &rec.Timestamp, &rec.User); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		rec.Timestamp = rec.Timestamp.UTC()
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return records, nil
}

func (r *PostgresRepository) Close() error { return r.closer() }
