// Package handlers holds the HTTP handlers of the evidence map API.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ShabiDHM/advocatus-sub001/application/commands"
	"github.com/ShabiDHM/advocatus-sub001/application/commands/bus"
	"github.com/ShabiDHM/advocatus-sub001/application/queries"
	querybus "github.com/ShabiDHM/advocatus-sub001/application/queries/bus"
	"github.com/ShabiDHM/advocatus-sub001/application/services"
	"github.com/ShabiDHM/advocatus-sub001/domain/core/aggregates"
	domainsvc "github.com/ShabiDHM/advocatus-sub001/domain/services"
	pkgerrors "github.com/ShabiDHM/advocatus-sub001/pkg/errors"
)

// maxBodyBytes caps request bodies
const maxBodyBytes = 10 << 20

var errEmptyBody = pkgerrors.NewValidationError("request body is required")

// Importer merges extracted entities into a case's map
type Importer interface {
	Import(ctx context.Context, caseID string, req services.ImportRequest) (domainsvc.ImportResult, error)
}

// EvidenceMapHandler handles evidence map HTTP requests
type EvidenceMapHandler struct {
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	importer   Importer
	errors     *pkgerrors.ErrorHandler
	logger     *zap.Logger
}

// NewEvidenceMapHandler creates a new evidence map handler
func NewEvidenceMapHandler(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	importer Importer,
	errs *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *EvidenceMapHandler {
	return &EvidenceMapHandler{
		commandBus: commandBus,
		queryBus:   queryBus,
		importer:   importer,
		errors:     errs,
		logger:     logger,
	}
}

// GetEvidenceMap handles GET /cases/{caseID}/evidence-map
func (h *EvidenceMapHandler) GetEvidenceMap(w http.ResponseWriter, r *http.Request) {
	result, err := h.queryBus.Ask(r.Context(), queries.GetEvidenceMapQuery{
		CaseID: chi.URLParam(r, "caseID"),
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, result)
}

// SaveEvidenceMap handles PUT /cases/{caseID}/evidence-map
func (h *EvidenceMapHandler) SaveEvidenceMap(w http.ResponseWriter, r *http.Request) {
	var doc aggregates.Document
	if err := h.decode(w, r, &doc); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	cmd := commands.SaveEvidenceMapCommand{
		CaseID:   chi.URLParam(r, "caseID"),
		Document: doc,
	}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GenerateReport handles POST /cases/{caseID}/evidence-map/report. An empty
// body renders the stored map.
func (h *EvidenceMapHandler) GenerateReport(w http.ResponseWriter, r *http.Request) {
	query := queries.GenerateReportQuery{CaseID: chi.URLParam(r, "caseID")}

	var body ReportRequest
	err := h.decode(w, r, &body)
	switch {
	case errors.Is(err, errEmptyBody):
	case err != nil:
		h.errors.Handle(w, r, err)
		return
	default:
		query.Graph = &aggregates.Document{Nodes: body.Nodes, Edges: body.Edges}
	}

	result, err := h.queryBus.Ask(r.Context(), query)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	report := result.(*queries.ReportResult)

	w.Header().Set("Content-Type", report.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", report.FileName))
	w.Header().Set("Content-Length", strconv.Itoa(len(report.Content)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(report.Content); err != nil {
		h.logger.Error("Failed to write report", zap.Error(err))
	}
}

// GetDisplayedView handles GET /cases/{caseID}/evidence-map/view
func (h *EvidenceMapHandler) GetDisplayedView(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	hideUnconnected, err := boolParam(params.Get("hideUnconnected"))
	if err != nil {
		h.errors.Handle(w, r, pkgerrors.NewValidationError("hideUnconnected must be a boolean"))
		return
	}
	highlight, err := boolParam(params.Get("highlightContradictions"))
	if err != nil {
		h.errors.Handle(w, r, pkgerrors.NewValidationError("highlightContradictions must be a boolean"))
		return
	}

	result, err := h.queryBus.Ask(r.Context(), queries.GetDisplayedViewQuery{
		CaseID:                  chi.URLParam(r, "caseID"),
		HideUnconnected:         hideUnconnected,
		HighlightContradictions: highlight,
		SearchTerm:              params.Get("q"),
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, result)
}

// Import handles POST /cases/{caseID}/evidence-map/import
func (h *EvidenceMapHandler) Import(w http.ResponseWriter, r *http.Request) {
	var req services.ImportRequest
	if err := h.decode(w, r, &req); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	result, err := h.importer.Import(r.Context(), chi.URLParam(r, "caseID"), req)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, NewImportResponse(result))
}

// decode reads a JSON body. An empty body yields errEmptyBody.
func (h *EvidenceMapHandler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	err := json.NewDecoder(r.Body).Decode(dst)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, io.EOF):
		return errEmptyBody
	default:
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return pkgerrors.NewValidationError("request body too large")
		}
		return pkgerrors.NewValidationError("invalid request body: " + err.Error())
	}
}

func (h *EvidenceMapHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

func boolParam(v string) (bool, error) {
	if v == "" {
		return false, nil
	}
	return strconv.ParseBool(v)
}
