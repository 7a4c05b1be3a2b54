package httpadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pharmlane/rx-pack-advisor/internal/core/domain"
)

type fakeParser struct {
	parsed *domain.ParsedInstruction
	err    error
}

func (f *fakeParser) ParseSig(_ context.Context, _ string) (*domain.ParsedInstruction, error) {
	return f.parsed, f.err
}

type fakeAdvisor struct {
	recommendation *domain.Recommendation
	err            error
	gotRequest     domain.RecommendationRequest
}

func (f *fakeAdvisor) Recommend(_ context.Context, req domain.RecommendationRequest) (*domain.Recommendation, error) {
	f.gotRequest = req
	return f.recommendation, f.err
}

type fakeImportRequester struct {
	objectKey string
	err       error
}

func (f *fakeImportRequester) RequestImport(_ context.Context, _ string, _ io.Reader) (string, error) {
	return f.objectKey, f.err
}

type fakeExtractor struct {
	text string
	err  error
}

func (f *fakeExtractor) ExtractText(_ context.Context, _ io.Reader) (string, error) {
	return f.text, f.err
}

func newTestRouter(parser *fakeParser, advisor *fakeAdvisor, importer *fakeImportRequester, extractor *fakeExtractor) http.Handler {
	if parser == nil {
		parser = &fakeParser{}
	}
	if advisor == nil {
		advisor = &fakeAdvisor{}
	}
	if importer == nil {
		importer = &fakeImportRequester{}
	}
	if extractor == nil {
		extractor = &fakeExtractor{}
	}
	return NewRouter(parser, advisor, importer, extractor, nil, RouterOptions{}).Handler()
}

func TestParseSigReturnsInstruction(t *testing.T) {
	parsed := &domain.ParsedInstruction{
		DoseAmount:  1,
		DosesPerDay: 2,
		Unit:        domain.UnitTablet,
		Confidence:  1,
		Source:      domain.SourceGrammar,
	}
	handler := newTestRouter(&fakeParser{parsed: parsed}, nil, nil, nil)

	body := strings.NewReader(`{"text":"take 1 tablet twice daily"}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/sig/parse", body)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}
	var got domain.ParsedInstruction
	if err := json.NewDecoder(res.Body).Decode(&got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.DoseAmount != 1 || got.DosesPerDay != 2 || got.Unit != domain.UnitTablet {
		t.Fatalf("unexpected instruction: %+v", got)
	}
}

func TestParseSigMissReturns422(t *testing.T) {
	parser := &fakeParser{err: domain.ErrNoParse}
	handler := newTestRouter(parser, nil, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/sig/parse", strings.NewReader(`{"text":"gibberish"}`))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for unparseable text, got %d", res.Code)
	}
}

func TestParseSigRequiresText(t *testing.T) {
	handler := newTestRouter(nil, nil, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/sig/parse", strings.NewReader(`{"text":"  "}`))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for blank text, got %d", res.Code)
	}
}

func TestRecommendPassesRequestThrough(t *testing.T) {
	advisor := &fakeAdvisor{
		recommendation: &domain.Recommendation{
			Selections: []domain.RankedSelection{
				{Candidate: domain.Candidate{NDC: "00093101001", MatchScore: 100}},
			},
		},
	}
	handler := newTestRouter(&fakeParser{}, advisor, nil, nil)

	body := strings.NewReader(`{"instruction":"take 1 tablet twice daily","days_supply":30,"drug_query":"lisinopril","preferred_ndc":"0093-1010-01","limit":3}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/recommendations", body)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}
	if advisor.gotRequest.DaysSupply != 30 || advisor.gotRequest.DrugQuery != "lisinopril" {
		t.Fatalf("request not passed through: %+v", advisor.gotRequest)
	}
	if advisor.gotRequest.PreferredNDC != "0093-1010-01" || advisor.gotRequest.Limit != 3 {
		t.Fatalf("request not passed through: %+v", advisor.gotRequest)
	}
}

func TestRecommendMapsInvalidInputTo400(t *testing.T) {
	advisor := &fakeAdvisor{err: domain.WrapError(domain.ErrInvalidInput, "recommend", domain.ErrInvalidInput)}
	handler := newTestRouter(&fakeParser{}, advisor, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/recommendations", strings.NewReader(`{}`))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func multipartBody(t *testing.T, field, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	return &buf, writer.FormDataContentType()
}

func TestImportDirectoryAccepted(t *testing.T) {
	importer := &fakeImportRequester{objectKey: "abc_directory.xlsx"}
	handler := newTestRouter(nil, nil, importer, nil)

	buf, contentType := multipartBody(t, "file", "directory.xlsx", "not-really-xlsx")
	req := httptest.NewRequest(http.MethodPost, "/v1/directory/import", buf)
	req.Header.Set("Content-Type", contentType)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", res.Code, res.Body.String())
	}
	var resp map[string]string
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["object_key"] != "abc_directory.xlsx" {
		t.Fatalf("unexpected object key: %q", resp["object_key"])
	}
}

func TestExtractSigReturnsTextWithoutInstructionOnMiss(t *testing.T) {
	extractor := &fakeExtractor{text: "apply topically as directed"}
	parser := &fakeParser{err: domain.ErrNoParse}
	handler := newTestRouter(parser, nil, nil, extractor)

	buf, contentType := multipartBody(t, "file", "sig.pdf", "%PDF-fake")
	req := httptest.NewRequest(http.MethodPost, "/v1/sig/extract", buf)
	req.Header.Set("Content-Type", contentType)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}
	var resp struct {
		Text        string                    `json:"text"`
		Instruction *domain.ParsedInstruction `json:"instruction"`
	}
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Text != "apply topically as directed" {
		t.Fatalf("unexpected text: %q", resp.Text)
	}
	if resp.Instruction != nil {
		t.Fatalf("expected no instruction on parse miss")
	}
}
