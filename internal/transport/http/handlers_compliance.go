package httptransport

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"pinksync/internal/compliance"
	"pinksync/internal/platform/middleware"
	id "pinksync/pkg/domain"
	dErrors "pinksync/pkg/domain-errors"
)

type violationResponse struct {
	Type        string    `json:"type"`
	Severity    string    `json:"severity"`
	Timestamp   time.Time `json:"timestamp"`
	Description string    `json:"description,omitempty"`
}

type complianceReportResponse struct {
	AppID          string              `json:"app_id"`
	Level          string              `json:"compliance_level"`
	Status         string              `json:"status"`
	EventsCount    int64               `json:"events_count"`
	LastEventAt    *time.Time          `json:"last_event_at,omitempty"`
	Violations     []violationResponse `json:"violations"`
	CertificateURL string              `json:"certificate_url,omitempty"`
}

func (h *Handler) handleGetCompliance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	appID, err := id.ParseAppID(chi.URLParam(r, "appID"))
	if err != nil {
		writeError(w, err)
		return
	}

	report, err := h.broker.GetCompliance(ctx, appID)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := complianceReportResponse{
		AppID:          report.AppID.String(),
		Level:          report.Level.String(),
		Status:         string(report.Status),
		EventsCount:    report.EventsCount,
		Violations:     make([]violationResponse, 0, len(report.Violations)),
		CertificateURL: report.CertificateURL,
	}
	if !report.LastEventAt.IsZero() {
		t := report.LastEventAt
		resp.LastEventAt = &t
	}
	for _, v := range report.Violations {
		resp.Violations = append(resp.Violations, violationResponse{
			Type:        v.Type,
			Severity:    v.Severity.String(),
			Timestamp:   v.Timestamp,
			Description: v.Description,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

type recordViolationRequest struct {
	Type        string     `json:"type"`
	Severity    string     `json:"severity"`
	Timestamp   *time.Time `json:"timestamp,omitempty"`
	Description string     `json:"description,omitempty"`
}

func (h *Handler) handleRecordViolation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	appID, err := id.ParseAppID(chi.URLParam(r, "appID"))
	if err != nil {
		writeError(w, err)
		return
	}

	var req recordViolationRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if req.Type == "" {
		writeError(w, dErrors.New(dErrors.CodeInvalidInput, "violation type cannot be empty"))
		return
	}
	severity, err := id.ParseSeverity(req.Severity)
	if err != nil {
		writeError(w, err)
		return
	}

	ts := time.Now().UTC()
	if req.Timestamp != nil {
		ts = req.Timestamp.UTC()
	}

	auditorID := middleware.GetAuditorID(ctx)
	err = h.broker.RecordViolation(ctx, appID, auditorID, compliance.Violation{
		Type:        req.Type,
		Severity:    severity,
		Timestamp:   ts,
		Description: req.Description,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "violation recorded",
		"app_id", appID,
		"auditor_id", auditorID,
		"type", req.Type,
		"severity", severity,
	)
	w.WriteHeader(http.StatusNoContent)
}
