package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pharmlane/rx-pack-advisor/internal/core/domain"
	"github.com/pharmlane/rx-pack-advisor/internal/core/ports"
	"github.com/pharmlane/rx-pack-advisor/internal/core/quantity"
	"github.com/pharmlane/rx-pack-advisor/internal/core/ranking"
	"github.com/pharmlane/rx-pack-advisor/internal/core/warnings"
)

// RecommendUseCase runs the full pipeline: instruction text to required
// quantity to ranked, warning-annotated package selections.
type RecommendUseCase struct {
	parser    ports.SigParser
	directory ports.PackageDirectory
	logger    *slog.Logger
}

func NewRecommendUseCase(
	parser ports.SigParser,
	directory ports.PackageDirectory,
	logger *slog.Logger,
) *RecommendUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &RecommendUseCase{
		parser:    parser,
		directory: directory,
		logger:    logger,
	}
}

func (uc *RecommendUseCase) Recommend(
	ctx context.Context,
	req domain.RecommendationRequest,
) (*domain.Recommendation, error) {
	if strings.TrimSpace(req.DrugQuery) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "recommend", errors.New("drug query is required"))
	}

	inst, err := uc.parser.ParseSig(ctx, req.Instruction)
	if err != nil {
		return nil, fmt.Errorf("parse instruction: %w", err)
	}

	required, err := quantity.Calculate(*inst, req.DaysSupply)
	if err != nil {
		return nil, err
	}

	records, err := uc.directory.FindPackages(ctx, req.DrugQuery)
	if err != nil {
		return nil, fmt.Errorf("find packages: %w", err)
	}

	ranked := ranking.Rank(records, required, ranking.Options{
		PreferredNDC: req.PreferredNDC,
		Limit:        req.Limit,
	})

	byNDC := make(map[string]domain.PackageRecord, len(records))
	for _, rec := range records {
		byNDC[rec.NDC] = rec
	}

	out := &domain.Recommendation{
		Instruction: *inst,
		Required:    required,
	}
	for _, cand := range ranked.Selections {
		selection := domain.RankedSelection{Candidate: cand}
		if src, ok := byNDC[cand.NDC]; ok {
			selection.Warnings = warnings.Generate(cand, required, *inst, src)
		}
		out.Selections = append(out.Selections, selection)
	}

	// A preferred package that was excluded as inactive still deserves an
	// advisory at the recommendation level.
	if preferred := ranking.NormalizeNDC(req.PreferredNDC); preferred != "" {
		for _, rec := range ranked.Inactive {
			if ranking.NormalizeNDC(rec.NDC) == preferred {
				out.Warnings = append(out.Warnings, domain.Warning{
					Type:     domain.WarningInactiveRecord,
					Severity: domain.SeverityError,
					Message:  fmt.Sprintf("preferred package %s is inactive in the directory", rec.NDC),
				})
			}
		}
	}

	if len(out.Selections) == 0 {
		uc.logger.Info("recommendation produced no candidates",
			"drug", req.DrugQuery,
			"records", len(records),
			"target_unit", required.Unit,
		)
	}
	return out, nil
}
