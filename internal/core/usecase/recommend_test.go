package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/pharmlane/rx-pack-advisor/internal/core/domain"
)

type fakeDirectory struct {
	records  []domain.PackageRecord
	err      error
	queries  []string
	upserted [][]domain.PackageRecord
}

func (f *fakeDirectory) FindPackages(_ context.Context, query string) ([]domain.PackageRecord, error) {
	f.queries = append(f.queries, query)
	return f.records, f.err
}

func (f *fakeDirectory) UpsertPackages(_ context.Context, records []domain.PackageRecord) error {
	f.upserted = append(f.upserted, records)
	return f.err
}

func newRecommendUC(records []domain.PackageRecord) (*RecommendUseCase, *fakeDirectory) {
	dir := &fakeDirectory{records: records}
	parser := NewSigParseUseCase(nil, nil, nil, nil)
	return NewRecommendUseCase(parser, dir, nil), dir
}

func TestRecommendRequiresDrugQuery(t *testing.T) {
	uc, _ := newRecommendUC(nil)
	_, err := uc.Recommend(context.Background(), domain.RecommendationRequest{
		Instruction: "take 1 tablet twice daily",
		DaysSupply:  30,
	})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestRecommendEndToEnd(t *testing.T) {
	records := []domain.PackageRecord{
		{NDC: "00093-1010-01", DrugName: "lisinopril", Description: "30 TABLET in 1 BOTTLE", Active: true},
		{NDC: "00093-1010-02", DrugName: "lisinopril", Description: "60 TABLET in 1 BOTTLE", Active: true},
	}
	uc, dir := newRecommendUC(records)

	rec, err := uc.Recommend(context.Background(), domain.RecommendationRequest{
		Instruction: "take 1 tablet twice daily",
		DaysSupply:  30,
		DrugQuery:   "lisinopril",
	})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if len(dir.queries) != 1 || dir.queries[0] != "lisinopril" {
		t.Fatalf("directory queried with %v", dir.queries)
	}
	if rec.Required.Total != 60 || rec.Required.Unit != domain.UnitTablet {
		t.Fatalf("required = %+v", rec.Required)
	}
	if len(rec.Selections) == 0 {
		t.Fatal("expected selections")
	}
	top := rec.Selections[0]
	if top.NDC != "00093-1010-02" || top.MatchScore != 100 {
		t.Fatalf("top selection = %+v", top.Candidate)
	}
	if len(top.Warnings) != 0 {
		t.Fatalf("exact fill should carry no warnings, got %v", top.Warnings)
	}
	if len(rec.Warnings) != 0 {
		t.Fatalf("unexpected recommendation-level warnings: %v", rec.Warnings)
	}
}

func TestRecommendAnnotatesOverfillWarnings(t *testing.T) {
	records := []domain.PackageRecord{
		{NDC: "00093-2020-01", DrugName: "metformin", Description: "90 TABLET in 1 BOTTLE", Active: true},
	}
	uc, _ := newRecommendUC(records)

	rec, err := uc.Recommend(context.Background(), domain.RecommendationRequest{
		Instruction: "take 1 tablet twice daily",
		DaysSupply:  30,
		DrugQuery:   "metformin",
	})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if len(rec.Selections) != 1 {
		t.Fatalf("selections = %d, want 1", len(rec.Selections))
	}
	found := false
	for _, w := range rec.Selections[0].Warnings {
		if w.Type == domain.WarningOverfill {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected an overfill warning on a 90-for-60 fill, got %v", rec.Selections[0].Warnings)
	}
}

func TestRecommendPreferredInactiveSurfaced(t *testing.T) {
	records := []domain.PackageRecord{
		{NDC: "00093-1010-01", DrugName: "lisinopril", Description: "60 TABLET in 1 BOTTLE", Active: true},
		{NDC: "00093-1010-05", DrugName: "lisinopril", Description: "60 TABLET in 1 BOTTLE", Active: false},
	}
	uc, _ := newRecommendUC(records)

	rec, err := uc.Recommend(context.Background(), domain.RecommendationRequest{
		Instruction:  "take 1 tablet twice daily",
		DaysSupply:   30,
		DrugQuery:    "lisinopril",
		PreferredNDC: "0093-1010-05",
	})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if len(rec.Warnings) != 1 {
		t.Fatalf("recommendation warnings = %v, want one inactive advisory", rec.Warnings)
	}
	w := rec.Warnings[0]
	if w.Type != domain.WarningInactiveRecord || w.Severity != domain.SeverityError {
		t.Fatalf("warning = %+v", w)
	}
	for _, sel := range rec.Selections {
		if sel.NDC == "00093-1010-05" {
			t.Fatal("inactive package must not be selected")
		}
	}
}

func TestRecommendParseFailurePropagates(t *testing.T) {
	uc, _ := newRecommendUC(nil)
	_, err := uc.Recommend(context.Background(), domain.RecommendationRequest{
		Instruction: "use as directed",
		DaysSupply:  30,
		DrugQuery:   "lisinopril",
	})
	if !errors.Is(err, domain.ErrNoParse) {
		t.Fatalf("expected ErrNoParse, got %v", err)
	}
}

func TestRecommendDirectoryFailurePropagates(t *testing.T) {
	dir := &fakeDirectory{err: domain.WrapError(domain.ErrTemporary, "find packages", errors.New("connection refused"))}
	parser := NewSigParseUseCase(nil, nil, nil, nil)
	uc := NewRecommendUseCase(parser, dir, nil)

	_, err := uc.Recommend(context.Background(), domain.RecommendationRequest{
		Instruction: "take 1 tablet twice daily",
		DaysSupply:  30,
		DrugQuery:   "lisinopril",
	})
	if !errors.Is(err, domain.ErrTemporary) {
		t.Fatalf("expected ErrTemporary, got %v", err)
	}
}

func TestRecommendInvalidDaysSupply(t *testing.T) {
	uc, _ := newRecommendUC(nil)
	_, err := uc.Recommend(context.Background(), domain.RecommendationRequest{
		Instruction: "take 1 tablet twice daily",
		DaysSupply:  0,
		DrugQuery:   "lisinopril",
	})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for zero days supply, got %v", err)
	}
}
