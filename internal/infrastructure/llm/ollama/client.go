// Package ollama implements the learned-model collaborators: the sig
// completion fallback and the instruction rewriter.
package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/pharmlane/rx-pack-advisor/internal/core/domain"
	"github.com/pharmlane/rx-pack-advisor/internal/infrastructure/resilience"
)

type Client struct {
	baseURL    string
	genModel   string
	httpClient *http.Client
	executor   *resilience.Executor
}

func New(baseURL, genModel string, executor *resilience.Executor) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		genModel:   genModel,
		httpClient: &http.Client{Timeout: 120 * time.Second},
		executor:   executor,
	}
}

// SigCompleter asks the model for a structured parse of a dosing
// instruction the grammar could not confidently resolve.
type SigCompleter struct {
	client *Client
}

func NewSigCompleter(client *Client) *SigCompleter {
	return &SigCompleter{client: client}
}

// sigReply is the wire shape the prompt requests. Required fields are
// pointers so an omitted field is distinguishable from a zero value.
type sigReply struct {
	DoseAmount  *float64 `json:"dose_amount"`
	DosesPerDay *float64 `json:"doses_per_day"`
	Unit        *string  `json:"unit"`
	Confidence  *float64 `json:"confidence"`

	DosageForm    string `json:"dosage_form,omitempty"`
	Concentration *struct {
		Amount     float64 `json:"amount"`
		AmountUnit string  `json:"amount_unit"`
		Volume     float64 `json:"volume"`
		VolumeUnit string  `json:"volume_unit"`
	} `json:"concentration,omitempty"`
	InsulinStrength float64 `json:"insulin_strength,omitempty"`
	InhalerCapacity int     `json:"inhaler_capacity,omitempty"`
}

func (c *SigCompleter) CompleteSig(ctx context.Context, rawText string) (*domain.ParsedInstruction, error) {
	respText, err := c.client.generateJSON(ctx, "complete_sig", buildSigPrompt(rawText))
	if err != nil {
		return nil, err
	}

	var reply sigReply
	if err := json.Unmarshal([]byte(extractJSONObject(respText)), &reply); err != nil {
		return nil, domain.WrapError(domain.ErrNoParse, "decode sig completion", err)
	}
	return validateSigReply(reply)
}

// validateSigReply checks required fields strictly and drops malformed
// optional fields instead of failing the reply.
func validateSigReply(reply sigReply) (*domain.ParsedInstruction, error) {
	if reply.DoseAmount == nil || reply.DosesPerDay == nil || reply.Unit == nil || reply.Confidence == nil {
		return nil, domain.WrapError(domain.ErrNoParse, "validate sig completion", errMissingRequired)
	}
	parsed := domain.ParsedInstruction{
		DoseAmount:  *reply.DoseAmount,
		DosesPerDay: *reply.DosesPerDay,
		Confidence:  *reply.Confidence,
		Source:      domain.SourceModel,
	}
	if parsed.DoseAmount <= 0 || parsed.DosesPerDay < 0 || parsed.Confidence < 0 || parsed.Confidence > 1 {
		return nil, domain.WrapError(domain.ErrNoParse, "validate sig completion", errOutOfRange)
	}

	unit, ok := canonicalReplyUnit(*reply.Unit)
	if !ok {
		return nil, domain.WrapError(domain.ErrNoParse, "validate sig completion", errUnknownUnit)
	}
	parsed.Unit = unit

	switch domain.DosageForm(reply.DosageForm) {
	case domain.FormTablet, domain.FormCapsule, domain.FormLiquid, domain.FormInsulin, domain.FormInhaler, domain.FormOther:
		parsed.DosageForm = domain.DosageForm(reply.DosageForm)
	}
	if c := reply.Concentration; c != nil {
		if vu, ok := canonicalReplyUnit(c.VolumeUnit); ok {
			candidate := domain.Concentration{
				Amount:     c.Amount,
				AmountUnit: c.AmountUnit,
				Volume:     c.Volume,
				VolumeUnit: vu,
			}
			if candidate.Valid() {
				parsed.Concentration = &candidate
			}
		}
	}
	if reply.InsulinStrength > 0 {
		parsed.InsulinStrength = reply.InsulinStrength
	}
	if reply.InhalerCapacity > 0 {
		parsed.InhalerCapacity = reply.InhalerCapacity
	}

	return &parsed, nil
}

// SigRewriter asks the model to restate an unparseable instruction in
// canonical phrasing.
type SigRewriter struct {
	client *Client
}

func NewSigRewriter(client *Client) *SigRewriter {
	return &SigRewriter{client: client}
}

func (r *SigRewriter) RewriteSig(ctx context.Context, rawText string) (string, error) {
	respText, err := r.client.generateText(ctx, "rewrite_sig", buildRewritePrompt(rawText))
	if err != nil {
		return "", err
	}
	return sanitizeRewrite(respText), nil
}

// sanitizeRewrite reduces a model reply to a single plain-text instruction
// line; anything else counts as no answer.
func sanitizeRewrite(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "`\"'")
	if idx := strings.IndexAny(s, "\r\n"); idx >= 0 {
		s = s[:idx]
	}
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "no change") {
		return ""
	}
	return s
}

func (c *Client) generateJSON(ctx context.Context, operation, prompt string) (string, error) {
	reqBody := map[string]any{
		"model":  c.genModel,
		"prompt": prompt,
		"stream": false,
		"format": "json",
	}
	return c.generate(ctx, operation, reqBody)
}

func (c *Client) generateText(ctx context.Context, operation, prompt string) (string, error) {
	reqBody := map[string]any{
		"model":  c.genModel,
		"prompt": prompt,
		"stream": false,
	}
	return c.generate(ctx, operation, reqBody)
}

func (c *Client) generate(ctx context.Context, operation string, reqBody map[string]any) (string, error) {
	var response struct {
		Response string `json:"response"`
	}

	call := func(callCtx context.Context) error {
		return c.postJSON(callCtx, "/api/generate", reqBody, &response, operation)
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, "ollama."+operation, call, classifyOllamaError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return "", wrapTemporaryIfNeeded(operation, err)
	}
	return strings.TrimSpace(response.Response), nil
}

func extractJSONObject(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		return raw[start : end+1]
	}
	return raw
}
