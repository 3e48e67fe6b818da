package httpadapter

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/Chaithz/thinkTree/internal/config"
	"github.com/Chaithz/thinkTree/internal/core/domain"
	"github.com/Chaithz/thinkTree/internal/core/ports"
	"github.com/Chaithz/thinkTree/internal/observability/metrics"
)

const (
	serviceName = "thinktree-api"
	// multipartOverhead leaves room for boundaries and part headers around the file.
	multipartOverhead = 1 << 20
)

type Router struct {
	cfg      config.Config
	ingestUC ports.DocumentIngestor
	queryUC  ports.DocumentQueryService
	metrics  *metrics.HTTPServerMetrics
}

// NewRouter builds the HTTP surface. httpMetrics may be nil.
func NewRouter(
	cfg config.Config,
	ingestUC ports.DocumentIngestor,
	queryUC ports.DocumentQueryService,
	httpMetrics *metrics.HTTPServerMetrics,
) *Router {
	return &Router{
		cfg:      cfg,
		ingestUC: ingestUC,
		queryUC:  queryUC,
		metrics:  httpMetrics,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/openapi.json", rt.openAPI)
	mux.HandleFunc("/parse-pdf/", rt.parsePDF)
	mux.HandleFunc("/parse-pdf", rt.parsePDF)
	mux.HandleFunc("/extract-pdf/", rt.extractPDF)
	mux.HandleFunc("/extract-pdf", rt.extractPDF)
	mux.HandleFunc("/query/", rt.query)
	mux.HandleFunc("/query", rt.query)

	var handler http.Handler = mux
	handler = backpressureMiddleware(handler, rt.cfg.APIMaxInFlight, rt.cfg.BackpressureWait())
	handler = rateLimitMiddleware(handler, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
		handler = rt.metrics.Middleware(serviceName, handler)
	}
	handler = accessLogMiddleware(handler)
	return requestIDMiddleware(handler)
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) openAPI(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	raw, err := openAPIJSON()
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(raw)
}

func (rt *Router) parsePDF(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	start := time.Now()

	doc, file, err := rt.uploadedFile(w, r)
	if err != nil {
		rt.recordIngest("parse-pdf", 0, start, err)
		writeError(w, err)
		return
	}
	defer file.Close()

	result, err := rt.ingestUC.Ingest(r.Context(), doc, file)
	if err != nil {
		rt.recordIngest("parse-pdf", 0, start, err)
		writeError(w, err)
		return
	}
	rt.recordIngest("parse-pdf", result.TotalChunks, start, nil)
	writeJSON(w, http.StatusOK, result)
}

func (rt *Router) extractPDF(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	start := time.Now()

	doc, file, err := rt.uploadedFile(w, r)
	if err != nil {
		rt.recordIngest("extract-pdf", 0, start, err)
		writeError(w, err)
		return
	}
	defer file.Close()

	extraction, err := rt.ingestUC.Extract(r.Context(), doc, file)
	rt.recordIngest("extract-pdf", 0, start, err)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, extraction)
}

func (rt *Router) uploadedFile(w http.ResponseWriter, r *http.Request) (domain.Document, multipart.File, error) {
	if rt.cfg.MaxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, rt.cfg.MaxUploadBytes+multipartOverhead)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return domain.Document{}, nil, domain.WrapError(domain.ErrInvalidInput, "read upload", err)
		}
		return domain.Document{}, nil, domain.WrapError(
			domain.ErrInvalidInput,
			"read upload",
			fmt.Errorf("multipart field 'file' is required: %w", err),
		)
	}

	doc := domain.Document{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
	}
	return doc, file, nil
}

type queryRequest struct {
	QueryText string `json:"query_text"`
	ModelName string `json:"model_name"`
}

func (rt *Router) query(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost && r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	start := time.Now()

	req, err := decodeQueryRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := rt.queryUC.Query(r.Context(), domain.QueryRequest{
		Text:      req.QueryText,
		ModelName: req.ModelName,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	if rt.metrics != nil {
		rt.metrics.RecordRAGObservation(serviceName, "query", result.Result.Len(), time.Since(start))
		rt.metrics.RecordGraphParse(serviceName, graphOutcome(result))
	}
	writeJSON(w, http.StatusOK, result)
}

// decodeQueryRequest accepts a JSON body, a form body or URL parameters.
// URL parameters fill fields the body left empty.
func decodeQueryRequest(r *http.Request) (queryRequest, error) {
	var req queryRequest

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch {
	case mediaType == "application/json":
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return req, domain.WrapError(domain.ErrInvalidInput, "decode query", fmt.Errorf("invalid json: %w", err))
		}
	case r.Method == http.MethodPost:
		if err := r.ParseForm(); err != nil {
			return req, domain.WrapError(domain.ErrInvalidInput, "decode query", err)
		}
		req.QueryText = r.PostForm.Get("query_text")
		req.ModelName = r.PostForm.Get("model_name")
	}

	params := r.URL.Query()
	if req.QueryText == "" {
		req.QueryText = params.Get("query_text")
	}
	if req.ModelName == "" {
		req.ModelName = params.Get("model_name")
	}
	req.ModelName = strings.TrimSpace(req.ModelName)
	return req, nil
}

func graphOutcome(result *domain.QueryResult) string {
	switch {
	case result.Graph != nil:
		return "parsed"
	case result.GraphError != "":
		return "unparsed"
	default:
		return "skipped"
	}
}

func (rt *Router) recordIngest(endpoint string, chunks int, start time.Time, err error) {
	if rt.metrics == nil {
		return
	}
	rt.metrics.RecordIngest(serviceName, endpoint, chunks, time.Since(start), err)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
