package handler

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"roadreport/internal/model"
	"roadreport/internal/service"
	"roadreport/internal/transport/rest/middleware"
)

// ReportHandler handles operator report endpoints
type ReportHandler struct {
	reportSvc *service.ReportService
}

// NewReportHandler creates a new report handler
func NewReportHandler(reportSvc *service.ReportService) *ReportHandler {
	return &ReportHandler{reportSvc: reportSvc}
}

// List handles GET /v1/reports
func (h *ReportHandler) List(w http.ResponseWriter, r *http.Request) {
	if middleware.GetOperatorID(r.Context()) == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	mode := model.Mode(r.URL.Query().Get("mode"))
	limit := int64(50)
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if n, err := strconv.ParseInt(limitStr, 10, 64); err == nil && n > 0 {
			limit = n
		}
	}

	reports, err := h.reportSvc.List(r.Context(), mode, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"reports": reports})
}

// Get handles GET /v1/reports/{id}
func (h *ReportHandler) Get(w http.ResponseWriter, r *http.Request) {
	if middleware.GetOperatorID(r.Context()) == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id := mux.Vars(r)["id"]
	report, err := h.reportSvc.Get(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if report == nil {
		writeError(w, http.StatusNotFound, "report not found")
		return
	}

	writeJSON(w, http.StatusOK, report)
}
