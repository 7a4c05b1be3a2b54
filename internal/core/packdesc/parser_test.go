package packdesc

import (
	"testing"

	"github.com/pharmlane/rx-pack-advisor/internal/core/domain"
)

func TestParseSimpleForms(t *testing.T) {
	cases := []struct {
		name  string
		desc  string
		qty   float64
		unit  string
		count int
		total float64
	}{
		{
			name: "count in container",
			desc: "30 TABLET in 1 BOTTLE",
			qty:  30, unit: "TABLET", count: 1, total: 30,
		},
		{
			name: "trailing ndc code stripped",
			desc: "90 TABLET in 1 BOTTLE (0093-1010-05)",
			qty:  90, unit: "TABLET", count: 1, total: 90,
		},
		{
			name: "descriptor between unit and container",
			desc: "100 TABLET, FILM COATED in 1 BOTTLE",
			qty:  100, unit: "TABLET", count: 1, total: 100,
		},
		{
			name: "bare quantity and unit",
			desc: "60 CAPSULE",
			qty:  60, unit: "CAPSULE", count: 1, total: 60,
		},
		{
			name: "explicit multiplier",
			desc: "2 x 30 TABLET",
			qty:  30, unit: "TABLET", count: 2, total: 60,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			parsed, ok := Parse(tc.desc)
			if !ok {
				t.Fatalf("Parse(%q) missed", tc.desc)
			}
			if parsed.Quantity != tc.qty || parsed.Unit != tc.unit {
				t.Fatalf("got qty %v unit %q, want %v %q", parsed.Quantity, parsed.Unit, tc.qty, tc.unit)
			}
			if parsed.PackageCount != tc.count || parsed.TotalQuantity != tc.total {
				t.Fatalf("got count %d total %v, want %d %v", parsed.PackageCount, parsed.TotalQuantity, tc.count, tc.total)
			}
		})
	}
}

func TestParseMultiPackMultipliesThrough(t *testing.T) {
	parsed, ok := Parse("3 BLISTER PACK in 1 CARTON / 10 TABLET in 1 BLISTER PACK")
	if !ok {
		t.Fatalf("expected parse")
	}
	if parsed.Quantity != 10 || parsed.Unit != "TABLET" {
		t.Fatalf("unexpected inner parse: %+v", parsed)
	}
	if parsed.PackageCount != 3 || parsed.TotalQuantity != 30 {
		t.Fatalf("got count %d total %v, want 3 30", parsed.PackageCount, parsed.TotalQuantity)
	}
}

func TestParseNestedMultiPack(t *testing.T) {
	parsed, ok := Parse("2 CARTON in 1 CASE / 3 BLISTER PACK in 1 CARTON / 10 TABLET in 1 BLISTER PACK")
	if !ok {
		t.Fatalf("expected parse")
	}
	if parsed.PackageCount != 6 || parsed.TotalQuantity != 60 {
		t.Fatalf("got count %d total %v, want 6 60", parsed.PackageCount, parsed.TotalQuantity)
	}
}

func TestParseStrengthSlashIsNotAPackCount(t *testing.T) {
	// The slash belongs to a mg/mL strength, not a carrier expression; the
	// leading "250 mg" must not be multiplied in as 250 cartons.
	parsed, ok := Parse("250 mg/5 mL in 1 BOTTLE")
	if !ok {
		t.Fatalf("expected parse")
	}
	if parsed.PackageCount != 1 {
		t.Fatalf("package count = %d, want 1", parsed.PackageCount)
	}
	if parsed.Quantity != 5 || parsed.Unit != "mL" || parsed.TotalQuantity != 5 {
		t.Fatalf("unexpected parse: %+v", parsed)
	}
	if parsed.Metadata == nil || parsed.Metadata.DosageForm != domain.FormLiquid {
		t.Fatalf("expected liquid metadata, got %+v", parsed.Metadata)
	}
}

func TestParseConcentrationLeadingExpressionRejected(t *testing.T) {
	// "250 mg in 1 mL" is a concentration, not "<N> <CONTAINER> in 1
	// <OUTER>"; only the volume phrase contributes.
	parsed, ok := Parse("250 mg in 1 mL / 5 mL in 1 VIAL")
	if !ok {
		t.Fatalf("expected parse")
	}
	if parsed.PackageCount != 1 || parsed.TotalQuantity != 5 {
		t.Fatalf("got count %d total %v, want 1 5", parsed.PackageCount, parsed.TotalQuantity)
	}
}

func TestParseMultiPackSingleContainerPassesThrough(t *testing.T) {
	parsed, ok := Parse("1 BOTTLE in 1 CARTON / 100 TABLET in 1 BOTTLE")
	if !ok {
		t.Fatalf("expected parse")
	}
	if parsed.PackageCount != 1 || parsed.TotalQuantity != 100 {
		t.Fatalf("got count %d total %v, want 1 100", parsed.PackageCount, parsed.TotalQuantity)
	}
}

func TestParseLiquid(t *testing.T) {
	parsed, ok := Parse("473 mL in 1 BOTTLE")
	if !ok {
		t.Fatalf("expected parse")
	}
	if parsed.Quantity != 473 || parsed.Unit != "mL" {
		t.Fatalf("unexpected parse: %+v", parsed)
	}
	if parsed.Metadata == nil || parsed.Metadata.DosageForm != domain.FormLiquid {
		t.Fatalf("expected liquid metadata, got %+v", parsed.Metadata)
	}
}

func TestParseLiquidWithDescriptor(t *testing.T) {
	parsed, ok := Parse("100 mL, SUSPENSION in 1 BOTTLE, PLASTIC")
	if !ok {
		t.Fatalf("expected parse")
	}
	if parsed.Quantity != 100 || parsed.Unit != "mL" {
		t.Fatalf("unexpected parse: %+v", parsed)
	}
}

func TestParseInsulinVolumeTimesStrength(t *testing.T) {
	parsed, ok := Parse("10 mL in 1 VIAL, U-100 INSULIN")
	if !ok {
		t.Fatalf("expected parse")
	}
	if parsed.Unit != "UNIT" || parsed.TotalQuantity != 1000 {
		t.Fatalf("got unit %q total %v, want UNIT 1000", parsed.Unit, parsed.TotalQuantity)
	}
	if parsed.Metadata == nil || parsed.Metadata.InsulinStrength != 100 {
		t.Fatalf("expected U-100 metadata, got %+v", parsed.Metadata)
	}
}

func TestParseInsulinU500(t *testing.T) {
	parsed, ok := Parse("20 mL in 1 VIAL, U-500 INSULIN HUMAN")
	if !ok {
		t.Fatalf("expected parse")
	}
	if parsed.TotalQuantity != 10000 {
		t.Fatalf("total = %v, want 10000", parsed.TotalQuantity)
	}
}

func TestParseInsulinDirectUnits(t *testing.T) {
	parsed, ok := Parse("1500 UNITS in 1 PEN, INSULIN GLARGINE")
	if !ok {
		t.Fatalf("expected parse")
	}
	if parsed.Unit != "UNIT" || parsed.TotalQuantity != 1500 {
		t.Fatalf("got unit %q total %v, want UNIT 1500", parsed.Unit, parsed.TotalQuantity)
	}
	if parsed.Metadata == nil || parsed.Metadata.InsulinStrength != 100 {
		t.Fatalf("expected default strength 100, got %+v", parsed.Metadata)
	}
}

func TestParsePlainVolumeStaysLiquidWithoutInsulinSignal(t *testing.T) {
	// Ambiguous between liquid and U-100 insulin; liquid wins without an
	// explicit marker.
	parsed, ok := Parse("10 mL in 1 VIAL")
	if !ok {
		t.Fatalf("expected parse")
	}
	if parsed.Unit != "mL" || parsed.TotalQuantity != 10 {
		t.Fatalf("got unit %q total %v, want mL 10", parsed.Unit, parsed.TotalQuantity)
	}
}

func TestParseInhaler(t *testing.T) {
	cases := []struct {
		desc  string
		total float64
	}{
		{"200 SPRAY, METERED in 1 INHALER", 200},
		{"120 ACTUATION in 1 CANISTER", 120},
		{"60 PUFFS PER CANISTER", 60},
	}
	for _, tc := range cases {
		parsed, ok := Parse(tc.desc)
		if !ok {
			t.Fatalf("Parse(%q) missed", tc.desc)
		}
		if parsed.Unit != "ACTUATION" || parsed.TotalQuantity != tc.total {
			t.Fatalf("Parse(%q) = unit %q total %v, want ACTUATION %v", tc.desc, parsed.Unit, parsed.TotalQuantity, tc.total)
		}
		if parsed.Metadata == nil || parsed.Metadata.DosageForm != domain.FormInhaler {
			t.Fatalf("expected inhaler metadata for %q", tc.desc)
		}
	}
}

func TestParseMisses(t *testing.T) {
	cases := []string{
		"",
		"BOTTLE",
		"in 1 BOTTLE",
		"KIT",
	}
	for _, desc := range cases {
		if parsed, ok := Parse(desc); ok {
			t.Fatalf("Parse(%q) = %+v, want miss", desc, parsed)
		}
	}
}
