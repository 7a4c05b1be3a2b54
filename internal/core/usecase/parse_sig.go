package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/pharmlane/rx-pack-advisor/internal/core/domain"
	"github.com/pharmlane/rx-pack-advisor/internal/core/ports"
	"github.com/pharmlane/rx-pack-advisor/internal/core/sig"
)

// Deterministic parses below this confidence trigger the learned-model
// stage. The grammar's own acceptance floor is lower, so a parse in between
// is kept as a pending result in case the model stage yields nothing.
const modelFallbackThreshold = 0.8

// maxRewrites bounds the rewrite-and-retry stage to a single attempt.
const maxRewrites = 1

// SigParseUseCase sequences the instruction parse stages: cache check,
// deterministic grammar, learned-model completion, then one
// rewrite-and-retry. Collaborator failures are logged and degrade to the
// next stage; the orchestrator itself never raises anything but
// domain.ErrNoParse.
type SigParseUseCase struct {
	cache     ports.SigCache
	completer ports.SigCompleter
	rewriter  ports.SigRewriter
	logger    *slog.Logger
}

func NewSigParseUseCase(
	cache ports.SigCache,
	completer ports.SigCompleter,
	rewriter ports.SigRewriter,
	logger *slog.Logger,
) *SigParseUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &SigParseUseCase{
		cache:     cache,
		completer: completer,
		rewriter:  rewriter,
		logger:    logger,
	}
}

func (uc *SigParseUseCase) ParseSig(ctx context.Context, text string) (*domain.ParsedInstruction, error) {
	if sig.Normalize(text) == "" {
		return nil, domain.WrapError(domain.ErrNoParse, "parse sig", errors.New("empty instruction text"))
	}
	return uc.parse(ctx, text, sig.Normalize(text), maxRewrites)
}

// parse runs the stage machine over one text. storeKey is the cache key of
// the ORIGINAL input: a successful parse of rewritten text is cached under
// the original key, not the rewritten one.
func (uc *SigParseUseCase) parse(
	ctx context.Context,
	text, storeKey string,
	rewritesLeft int,
) (*domain.ParsedInstruction, error) {
	norm := sig.Normalize(text)

	if cached := uc.cacheLookup(ctx, norm); cached != nil {
		// On the rewrite path the hit lives under the rewritten text's
		// key; back-fill the original key so the next identical input
		// short-circuits without the model and rewriter.
		if norm != storeKey {
			uc.cacheStore(ctx, storeKey, cached)
		}
		return cached, nil
	}

	var pending *domain.ParsedInstruction
	if det, ok := sig.Parse(text); ok {
		if det.Confidence >= modelFallbackThreshold {
			uc.cacheStore(ctx, storeKey, &det)
			return &det, nil
		}
		pending = &det
	}

	if uc.completer != nil {
		completed, err := uc.completer.CompleteSig(ctx, text)
		switch {
		case err == nil && completed.Valid():
			completed.Source = domain.SourceModel
			uc.cacheStore(ctx, storeKey, completed)
			return completed, nil
		case err != nil && !domain.IsKind(err, domain.ErrNoParse):
			uc.logger.Warn("sig completion failed", "error", err)
		}
	}

	if pending != nil {
		uc.cacheStore(ctx, storeKey, pending)
		return pending, nil
	}

	if rewritesLeft > 0 && uc.rewriter != nil {
		rewritten, err := uc.rewriter.RewriteSig(ctx, text)
		if err != nil {
			uc.logger.Warn("sig rewrite failed", "error", err)
		} else if rewrittenNorm := sig.Normalize(rewritten); rewrittenNorm != "" && rewrittenNorm != norm {
			parsed, err := uc.parse(ctx, rewritten, storeKey, rewritesLeft-1)
			if err == nil {
				parsed.Source = domain.SourceRewrite
				return parsed, nil
			}
		}
	}

	return nil, domain.ErrNoParse
}

// cacheLookup returns a valid cached parse or nil. Invalid cached values are
// evicted; cache failures are tolerated.
func (uc *SigParseUseCase) cacheLookup(ctx context.Context, key string) *domain.ParsedInstruction {
	if uc.cache == nil {
		return nil
	}
	cached, err := uc.cache.Get(ctx, key)
	if err != nil {
		if !domain.IsKind(err, domain.ErrCacheMiss) {
			uc.logger.Warn("sig cache get failed", "error", err)
		}
		return nil
	}
	if cached.Valid() {
		cached.Source = domain.SourceCache
		return cached
	}
	if err := uc.cache.Delete(ctx, key); err != nil {
		uc.logger.Warn("sig cache evict failed", "error", err)
	}
	return nil
}

func (uc *SigParseUseCase) cacheStore(ctx context.Context, key string, parsed *domain.ParsedInstruction) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.Set(ctx, key, parsed); err != nil {
		uc.logger.Warn("sig cache set failed", "error", err)
	}
}
