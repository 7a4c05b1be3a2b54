package ollama

import (
	"errors"

	"github.com/pharmlane/rx-pack-advisor/internal/core/domain"
	"github.com/pharmlane/rx-pack-advisor/internal/core/sig"
)

var (
	errMissingRequired = errors.New("reply is missing required fields")
	errOutOfRange      = errors.New("reply has out-of-range values")
	errUnknownUnit     = errors.New("reply unit is not in the vocabulary")
)

func canonicalReplyUnit(s string) (domain.Unit, bool) {
	return sig.CanonicalUnit(s)
}
