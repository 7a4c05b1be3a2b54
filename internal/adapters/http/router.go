package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pharmlane/rx-pack-advisor/internal/core/domain"
	"github.com/pharmlane/rx-pack-advisor/internal/core/ports"
	"github.com/pharmlane/rx-pack-advisor/internal/observability/metrics"
)

const serviceName = "api"

// TextExtractor pulls instruction text out of an uploaded document.
type TextExtractor interface {
	ExtractText(ctx context.Context, data io.Reader) (string, error)
}

type Router struct {
	parser    ports.SigParser
	advisor   ports.PackageAdvisor
	importer  ports.DirectoryImportRequester
	extractor TextExtractor
	metrics   *metrics.HTTPServerMetrics

	rateLimitRPS   int
	rateLimitBurst int
	maxInFlight    int
}

type RouterOptions struct {
	RateLimitRPS   int
	RateLimitBurst int
	MaxInFlight    int
}

func NewRouter(
	parser ports.SigParser,
	advisor ports.PackageAdvisor,
	importer ports.DirectoryImportRequester,
	extractor TextExtractor,
	serverMetrics *metrics.HTTPServerMetrics,
	options RouterOptions,
) *Router {
	return &Router{
		parser:         parser,
		advisor:        advisor,
		importer:       importer,
		extractor:      extractor,
		metrics:        serverMetrics,
		rateLimitRPS:   options.RateLimitRPS,
		rateLimitBurst: options.RateLimitBurst,
		maxInFlight:    options.MaxInFlight,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/sig/parse", rt.parseSig)
	mux.HandleFunc("/v1/sig/extract", rt.extractSig)
	mux.HandleFunc("/v1/recommendations", rt.recommend)
	mux.HandleFunc("/v1/directory/import", rt.importDirectory)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}

	var handler http.Handler = mux
	handler = rateLimitMiddleware(handler, rt.rateLimitRPS, rt.rateLimitBurst)
	handler = backpressureMiddleware(handler, rt.maxInFlight, 50*time.Millisecond)
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(serviceName, handler)
	}
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	return handler
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) parseSig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	parsed, err := rt.parser.ParseSig(r.Context(), req.Text)
	if err != nil {
		if rt.metrics != nil {
			rt.metrics.RecordSigParse(serviceName, "", "failure", 0)
		}
		writeError(w, mapErrorToHTTPStatus(err), err.Error())
		return
	}

	if rt.metrics != nil {
		rt.metrics.RecordSigParse(serviceName, string(parsed.Source), "success", parsed.Confidence)
		rt.metrics.RecordSigCache(serviceName, parsed.Source == domain.SourceCache)
		if parsed.Source == domain.SourceRewrite {
			rt.metrics.RecordSigRewrite(serviceName, "success")
		}
	}
	writeJSON(w, http.StatusOK, parsed)
}

func (rt *Router) extractSig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "multipart field 'file' is required")
		return
	}
	defer file.Close()

	text, err := rt.extractor.ExtractText(r.Context(), file)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if text == "" {
		writeError(w, http.StatusUnprocessableEntity, "no text found in upload")
		return
	}

	response := struct {
		Text        string                    `json:"text"`
		Instruction *domain.ParsedInstruction `json:"instruction,omitempty"`
	}{Text: text}

	// A parse miss is still a useful extraction result.
	parsed, err := rt.parser.ParseSig(r.Context(), text)
	if err != nil && !domain.IsKind(err, domain.ErrNoParse) {
		writeError(w, mapErrorToHTTPStatus(err), err.Error())
		return
	}
	if err == nil {
		response.Instruction = parsed
	}

	writeJSON(w, http.StatusOK, response)
}

func (rt *Router) recommend(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req struct {
		Instruction  string `json:"instruction"`
		DaysSupply   int    `json:"days_supply"`
		DrugQuery    string `json:"drug_query"`
		PreferredNDC string `json:"preferred_ndc"`
		Limit        int    `json:"limit"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	start := time.Now()
	recommendation, err := rt.advisor.Recommend(r.Context(), domain.RecommendationRequest{
		Instruction:  req.Instruction,
		DaysSupply:   req.DaysSupply,
		DrugQuery:    req.DrugQuery,
		PreferredNDC: req.PreferredNDC,
		Limit:        req.Limit,
	})
	if err != nil {
		if rt.metrics != nil {
			rt.metrics.RecordRecommendation(serviceName, "failure", 0, time.Since(start))
		}
		writeError(w, mapErrorToHTTPStatus(err), err.Error())
		return
	}

	if rt.metrics != nil {
		rt.metrics.RecordRecommendation(serviceName, "success", len(recommendation.Selections), time.Since(start))
		for _, warning := range recommendation.Warnings {
			rt.metrics.RecordWarning(serviceName, string(warning.Type))
		}
		for _, selection := range recommendation.Selections {
			for _, warning := range selection.Warnings {
				rt.metrics.RecordWarning(serviceName, string(warning.Type))
			}
		}
	}
	writeJSON(w, http.StatusOK, recommendation)
}

func (rt *Router) importDirectory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "multipart field 'file' is required")
		return
	}
	defer file.Close()

	objectKey, err := rt.importer.RequestImport(r.Context(), fileHeader.Filename, file)
	if err != nil {
		writeError(w, mapErrorToHTTPStatus(err), err.Error())
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{"object_key": objectKey})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrNoParse):
		return http.StatusUnprocessableEntity
	case domain.IsKind(err, domain.ErrRecordNotFound):
		return http.StatusNotFound
	case domain.IsKind(err, domain.ErrTemporary), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
