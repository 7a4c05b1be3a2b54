package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/pharmlane/rx-pack-advisor/internal/core/domain"
)

// PackageRepository stores the drug package directory the ranking engine
// draws candidates from.
type PackageRepository struct {
	db *sql.DB
}

func NewPackageRepository(db *sql.DB) *PackageRepository {
	return &PackageRepository{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *PackageRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026083001)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS packages (
	ndc TEXT PRIMARY KEY,
	drug_name TEXT NOT NULL,
	description TEXT,
	package_size DOUBLE PRECISION NOT NULL DEFAULT 0,
	unit TEXT NOT NULL DEFAULT '',
	active BOOLEAN NOT NULL DEFAULT TRUE,
	manufacturer TEXT,
	dosage_form TEXT,
	packagings JSONB NOT NULL DEFAULT '[]'::jsonb,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_packages_drug_name ON packages(lower(drug_name));
CREATE INDEX IF NOT EXISTS idx_packages_active ON packages(active);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *PackageRepository) FindPackages(ctx context.Context, drugQuery string) ([]domain.PackageRecord, error) {
	pattern := "%" + strings.TrimSpace(drugQuery) + "%"
	rows, err := r.db.QueryContext(ctx, `
SELECT ndc, drug_name, description, package_size, unit, active, manufacturer, dosage_form, packagings
FROM packages
WHERE drug_name ILIKE $1
ORDER BY ndc
`, pattern)
	if err != nil {
		return nil, fmt.Errorf("query packages: %w", err)
	}
	defer rows.Close()

	var records []domain.PackageRecord
	for rows.Next() {
		var rec domain.PackageRecord
		var description, manufacturer, dosageForm sql.NullString
		var packagingsRaw []byte

		err := rows.Scan(
			&rec.NDC, &rec.DrugName, &description, &rec.PackageSize, &rec.Unit,
			&rec.Active, &manufacturer, &dosageForm, &packagingsRaw,
		)
		if err != nil {
			return nil, fmt.Errorf("scan package: %w", err)
		}
		rec.Description = description.String
		rec.Manufacturer = manufacturer.String
		rec.DosageForm = dosageForm.String
		if len(packagingsRaw) > 0 {
			if err := json.Unmarshal(packagingsRaw, &rec.Packagings); err != nil {
				return nil, fmt.Errorf("unmarshal packagings: %w", err)
			}
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate packages: %w", err)
	}
	return records, nil
}

func (r *PackageRepository) UpsertPackages(ctx context.Context, records []domain.PackageRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	const query = `
INSERT INTO packages (
	ndc, drug_name, description, package_size, unit, active, manufacturer, dosage_form, packagings, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
ON CONFLICT (ndc) DO UPDATE SET
	drug_name = EXCLUDED.drug_name,
	description = EXCLUDED.description,
	package_size = EXCLUDED.package_size,
	unit = EXCLUDED.unit,
	active = EXCLUDED.active,
	manufacturer = EXCLUDED.manufacturer,
	dosage_form = EXCLUDED.dosage_form,
	packagings = EXCLUDED.packagings,
	updated_at = EXCLUDED.updated_at
`
	now := time.Now().UTC()
	for _, rec := range records {
		if strings.TrimSpace(rec.NDC) == "" {
			continue
		}
		packagingsJSON, err := json.Marshal(rec.Packagings)
		if err != nil {
			return fmt.Errorf("marshal packagings: %w", err)
		}
		if rec.Packagings == nil {
			packagingsJSON = []byte("[]")
		}
		_, err = tx.ExecContext(ctx, query,
			rec.NDC, rec.DrugName, rec.Description, rec.PackageSize, rec.Unit,
			rec.Active, rec.Manufacturer, rec.DosageForm, packagingsJSON, now,
		)
		if err != nil {
			return fmt.Errorf("upsert package %s: %w", rec.NDC, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert tx: %w", err)
	}
	return nil
}
