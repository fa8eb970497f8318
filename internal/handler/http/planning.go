package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shiftwise/roster-engine-go/internal/domain/planning"
	"github.com/shiftwise/roster-engine-go/internal/handler/http/response"
	"github.com/shiftwise/roster-engine-go/internal/service/export"
)

type PlanningHandler interface {
	CreateRuns(w http.ResponseWriter, r *http.Request)
	GetRun(w http.ResponseWriter, r *http.Request)
	GetSchedule(w http.ResponseWriter, r *http.Request)
	ExportRun(w http.ResponseWriter, r *http.Request)
	GetEmployeeSchedule(w http.ResponseWriter, r *http.Request)
}

type PlanningHandlerImpl struct {
	planningService planning.PlanningService
	exportService   export.ExportService
}

func NewPlanningHandler(planningService planning.PlanningService, exportService export.ExportService) PlanningHandler {
	return &PlanningHandlerImpl{
		planningService: planningService,
		exportService:   exportService,
	}
}

// CreateRuns implements PlanningHandler.
func (h *PlanningHandlerImpl) CreateRuns(w http.ResponseWriter, r *http.Request) {
	var createReq planning.CreateRunRequest

	// 1. Decode JSON
	if err := json.NewDecoder(r.Body).Decode(&createReq); err != nil {
		slog.Error("CreateRuns decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	// Call service. Request validation happens inside so unit failures
	// still come back as per-run statuses, not a rejected request.
	runs, err := h.planningService.CreateRuns(r.Context(), createReq)
	if err != nil {
		slog.Error("CreateRuns service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Planning runs created", runs)
}

// GetRun implements PlanningHandler.
func (h *PlanningHandlerImpl) GetRun(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "id")

	run, err := h.planningService.GetRun(r.Context(), runID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, run)
}

// GetSchedule implements PlanningHandler.
func (h *PlanningHandlerImpl) GetSchedule(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "id")

	schedule, err := h.planningService.GetSchedule(r.Context(), runID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, schedule)
}

// ExportRun implements PlanningHandler.
func (h *PlanningHandlerImpl) ExportRun(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "id")

	buf, filename, err := h.exportService.ExportRun(r.Context(), runID)
	if err != nil {
		slog.Error("ExportRun service error", "error", err)
		response.HandleError(w, err)
		return
	}

	w.Header().Set("Content-Description", "File Transfer")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("ExportRun write error", "error", err)
	}
}

// GetEmployeeSchedule implements PlanningHandler.
func (h *PlanningHandlerImpl) GetEmployeeSchedule(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "id")
	runID := r.URL.Query().Get("run_id")
	if runID == "" {
		response.BadRequest(w, "run_id query parameter is required", nil)
		return
	}

	cells, err := h.planningService.GetEmployeeSchedule(r.Context(), runID, employeeID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, cells)
}
