package reports

import (
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/de-tools/activereport/pkg/adapters"
	"github.com/de-tools/activereport/pkg/models/api"
	"github.com/de-tools/activereport/pkg/report"
	"github.com/de-tools/activereport/pkg/services/registry"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

const (
	FormatJSON = "json"
	FormatXML  = "xml"
	FormatCSV  = "csv"

	csvUnsupportedMessage = "This report cannot be exported to a comma separated values (CSV) list."
	csvFailedMessage      = "An error occured when processing the report."
	filenameLayout        = "20060102-150405"
)

type Handler struct {
	registry registry.Registry
	now      func() time.Time
}

func NewHandler(reg registry.Registry) *Handler {
	return &Handler{
		registry: reg,
		now:      time.Now,
	}
}

// Routes registers the report endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.ListResources)
	r.Get("/{resource}", h.Index)
	r.Get("/{resource}/new", h.New)
	r.Post("/{resource}", h.Create)
}

func (h *Handler) ListResources(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	response := []api.ReportResource{}
	for _, resource := range h.registry.ListResources() {
		def, err := h.registry.Lookup(resource)
		if err != nil {
			continue
		}
		response = append(response, adapters.MapDefinitionToApi(resource, def))
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		logger.Error().
			Err(err).
			Msg("failed to encode report resources")
	}
}

// Index sends the client to the blank report of the resource.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	resource := chi.URLParam(r, "resource")
	http.Redirect(w, r, newPath(resource), http.StatusSeeOther)
}

// New renders a blank report of the resource.
func (h *Handler) New(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	resource := chi.URLParam(r, "resource")

	def, err := h.registry.Lookup(resource)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	format := requestFormat(r)
	if format == FormatCSV {
		http.Error(w, "a blank report cannot be exported", http.StatusNotAcceptable)
		return
	}

	rep, err := report.New(ctx, def, nil, report.WithClock(h.now))
	if err != nil {
		h.fail(w, r, resource, err)
		return
	}

	h.writeReport(w, r, format, http.StatusOK, rep)
}

// Create builds a report from the submitted params and renders it in the
// requested format.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)
	resource := chi.URLParam(r, "resource")

	def, err := h.registry.Lookup(resource)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	params, found, err := readParams(r, resource)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if !found {
		http.Redirect(w, r, newPath(resource), http.StatusSeeOther)
		return
	}

	rep, err := report.New(ctx, def, params, report.WithClock(h.now))
	if err != nil {
		if errors.Is(err, report.ErrParamShape) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.fail(w, r, resource, err)
		return
	}

	ok, err := rep.Generate(ctx, true)
	if err != nil {
		h.fail(w, r, resource, err)
		return
	}

	format := requestFormat(r)
	logger.Info().
		Str("resource", resource).
		Int64("id", rep.ID).
		Bool("valid", ok).
		Str("format", format).
		Int("entries", rep.Entries.Len()).
		Msg("report generated")

	if !ok {
		switch format {
		case FormatXML:
			writeXML(w, r, http.StatusUnprocessableEntity, adapters.MapErrorsToXML(rep.Errors))
		case FormatCSV:
			writeText(w, http.StatusUnprocessableEntity, csvFailedMessage)
		default:
			writeJSON(w, r, http.StatusUnprocessableEntity, adapters.MapReportToApi(rep))
		}
		return
	}

	if format == FormatCSV {
		h.writeCSV(w, r, resource, rep)
		return
	}
	h.writeReport(w, r, format, http.StatusOK, rep)
}

func (h *Handler) writeCSV(w http.ResponseWriter, r *http.Request, resource string, rep *report.Report) {
	out, err := rep.ToCSV(r.Context())
	if err != nil {
		h.fail(w, r, resource, err)
		return
	}
	if out == nil {
		writeText(w, http.StatusOK, csvUnsupportedMessage)
		return
	}

	filename := fmt.Sprintf("%s-%s.csv", resource, h.now().Format(filenameLayout))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(out); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Str("resource", resource).Msg("failed to write csv")
	}
}

func (h *Handler) writeReport(w http.ResponseWriter, r *http.Request, format string, status int, rep *report.Report) {
	if format == FormatXML {
		writeXML(w, r, status, adapters.MapReportToXML(rep))
		return
	}
	writeJSON(w, r, status, adapters.MapReportToApi(rep))
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, resource string, err error) {
	zerolog.Ctx(r.Context()).Error().
		Err(err).
		Str("resource", resource).
		Msg("failed to generate report")
	http.Error(w, "failed to generate report", http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to encode json response")
	}
}

func writeXML(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(status)
	if _, err := w.Write([]byte(xml.Header)); err != nil {
		return
	}
	if err := xml.NewEncoder(w).Encode(v); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to encode xml response")
	}
}

func writeText(w http.ResponseWriter, status int, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(text))
}

// requestFormat picks the representation from the URL suffix, then the
// "format" query parameter, then the Accept header. JSON is the default.
func requestFormat(r *http.Request) string {
	format, _ := r.Context().Value(middleware.URLFormatCtxKey).(string)
	if format == "" {
		format = r.URL.Query().Get("format")
	}
	if format == "" {
		accept := r.Header.Get("Accept")
		switch {
		case strings.Contains(accept, "text/csv"):
			format = FormatCSV
		case strings.Contains(accept, "xml"):
			format = FormatXML
		}
	}

	switch strings.ToLower(format) {
	case FormatCSV:
		return FormatCSV
	case FormatXML:
		return FormatXML
	}
	return FormatJSON
}

func newPath(resource string) string {
	return "/reports/" + resource + "/new"
}
