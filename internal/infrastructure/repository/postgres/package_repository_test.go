package postgres

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/pharmlane/rx-pack-advisor/internal/core/domain"
)

func newRepoWithMock(t *testing.T) (*PackageRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	return &PackageRepository{db: db}, mock, func() { _ = db.Close() }
}

func TestFindPackagesScansRecords(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	rows := sqlmock.NewRows([]string{
		"ndc", "drug_name", "description", "package_size", "unit", "active", "manufacturer", "dosage_form", "packagings",
	}).AddRow(
		"00093101001", "LISINOPRIL", "30 TABLET in 1 BOTTLE", 30.0, "TABLET", true, "Teva", "TABLET", []byte(`["30 TABLET in 1 BOTTLE"]`),
	).AddRow(
		"00093101005", "LISINOPRIL", "90 TABLET in 1 BOTTLE", 90.0, "TABLET", false, "Teva", "TABLET", []byte(`[]`),
	)

	mock.ExpectQuery("SELECT ndc, drug_name, description").
		WithArgs("%lisinopril%").
		WillReturnRows(rows)

	records, err := repo.FindPackages(context.Background(), "lisinopril")
	if err != nil {
		t.Fatalf("FindPackages() error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].NDC != "00093101001" || records[0].PackageSize != 30 {
		t.Fatalf("unexpected first record: %+v", records[0])
	}
	if len(records[0].Packagings) != 1 {
		t.Fatalf("expected one packaging, got %v", records[0].Packagings)
	}
	if records[1].Active {
		t.Fatalf("expected second record inactive")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestUpsertPackagesSkipsBlankNDC(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO packages").
		WithArgs("00093101001", "LISINOPRIL", "30 TABLET in 1 BOTTLE", 30.0, "TABLET", true, "Teva", "TABLET", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.UpsertPackages(context.Background(), []domain.PackageRecord{
		{NDC: "  "},
		{
			NDC:          "00093101001",
			DrugName:     "LISINOPRIL",
			Description:  "30 TABLET in 1 BOTTLE",
			PackageSize:  30,
			Unit:         "TABLET",
			Active:       true,
			Manufacturer: "Teva",
			DosageForm:   "TABLET",
		},
	})
	if err != nil {
		t.Fatalf("UpsertPackages() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestUpsertPackagesNoRecordsIsNoop(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	if err := repo.UpsertPackages(context.Background(), nil); err != nil {
		t.Fatalf("UpsertPackages(nil) error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
