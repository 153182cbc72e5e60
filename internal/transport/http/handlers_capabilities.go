package httptransport

import (
	"net/http"
	"time"

	"pinksync/internal/capability"
	id "pinksync/pkg/domain"
	pstrings "pinksync/pkg/platform/strings"
)

type declareCapabilityRequest struct {
	AppID           string   `json:"app_id"`
	Capabilities    []string `json:"capabilities"`
	ComplianceLevel string   `json:"compliance_level"`
	Version         string   `json:"version,omitempty"`
}

func (req declareCapabilityRequest) toDeclareInput() (capability.DeclareInput, error) {
	appID, err := id.ParseAppID(req.AppID)
	if err != nil {
		return capability.DeclareInput{}, err
	}
	level, err := id.ParseComplianceLevel(req.ComplianceLevel)
	if err != nil {
		return capability.DeclareInput{}, err
	}

	raw := pstrings.DedupeAndTrimLower(req.Capabilities)
	caps := make([]id.Intent, 0, len(raw))
	for _, c := range raw {
		intent, err := id.ParseIntent(c)
		if err != nil {
			return capability.DeclareInput{}, err
		}
		caps = append(caps, intent)
	}

	return capability.DeclareInput{
		AppID:           appID,
		Capabilities:    caps,
		ComplianceLevel: level,
		Version:         req.Version,
	}, nil
}

func (h *Handler) handleDeclareCapability(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req declareCapabilityRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	in, err := req.toDeclareInput()
	if err != nil {
		writeError(w, err)
		return
	}

	if _, err := h.broker.DeclareCapability(ctx, in); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type declarationResponse struct {
	AppID           string    `json:"app_id"`
	Capabilities    []string  `json:"capabilities"`
	ComplianceLevel string    `json:"compliance_level"`
	Version         string    `json:"version,omitempty"`
	RegisteredAt    time.Time `json:"registered_at"`
}

type queryCapabilitiesResponse struct {
	Capabilities []declarationResponse `json:"capabilities"`
	Total        int                   `json:"total"`
}

func (h *Handler) handleQueryCapabilities(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	var filter capability.QueryFilter
	if raw := q.Get("app_id"); raw != "" {
		appID, err := id.ParseAppID(raw)
		if err != nil {
			writeError(w, err)
			return
		}
		filter.AppID = appID
	}
	if raw := q.Get("compliance_level"); raw != "" {
		level, err := id.ParseComplianceLevel(raw)
		if err != nil {
			writeError(w, err)
			return
		}
		filter.ComplianceLevel = level
	}
	if raw := q.Get("capability"); raw != "" {
		intent, err := id.ParseIntent(raw)
		if err != nil {
			writeError(w, err)
			return
		}
		filter.Intent = intent
	}

	decls, err := h.broker.QueryCapabilities(ctx, filter)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := queryCapabilitiesResponse{
		Capabilities: make([]declarationResponse, 0, len(decls)),
		Total:        len(decls),
	}
	for _, d := range decls {
		caps := make([]string, 0, len(d.Capabilities))
		for _, c := range d.Capabilities {
			caps = append(caps, c.String())
		}
		resp.Capabilities = append(resp.Capabilities, declarationResponse{
			AppID:           d.AppID.String(),
			Capabilities:    caps,
			ComplianceLevel: d.ComplianceLevel.String(),
			Version:         d.Version,
			RegisteredAt:    d.RegisteredAt,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}
