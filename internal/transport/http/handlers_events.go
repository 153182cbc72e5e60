package httptransport

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"pinksync/internal/broker"
	"pinksync/internal/platform/middleware"
	id "pinksync/pkg/domain"
	dErrors "pinksync/pkg/domain-errors"
)

type submitEventRequest struct {
	AppID     string         `json:"app_id"`
	UserID    string         `json:"user_id,omitempty"`
	Intent    string         `json:"intent"`
	Timestamp *time.Time     `json:"timestamp,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	LevelHint string         `json:"compliance_level,omitempty"`
}

type submitEventResponse struct {
	EventID     string    `json:"event_id"`
	Status      string    `json:"status"`
	Signature   string    `json:"signature"`
	Timestamp   time.Time `json:"timestamp"`
	EventsCount int64     `json:"events_count"`
	Matched     int       `json:"matched_subscriptions"`
}

// toSubmitInput validates a submission at the boundary. Everything past
// this point works with parsed domain types.
func (req submitEventRequest) toSubmitInput() (broker.SubmitInput, error) {
	appID, err := id.ParseAppID(req.AppID)
	if err != nil {
		return broker.SubmitInput{}, err
	}
	userID, err := id.ParseUserID(req.UserID)
	if err != nil {
		return broker.SubmitInput{}, err
	}
	intent, err := id.ParseIntent(req.Intent)
	if err != nil {
		return broker.SubmitInput{}, err
	}

	in := broker.SubmitInput{
		AppID:    appID,
		UserID:   userID,
		Intent:   intent,
		Metadata: req.Metadata,
	}
	if req.Timestamp != nil {
		in.Timestamp = req.Timestamp.UTC()
	}
	if req.LevelHint != "" {
		level, err := id.ParseComplianceLevel(req.LevelHint)
		if err != nil {
			return broker.SubmitInput{}, err
		}
		in.LevelHint = level
	}
	return in, nil
}

func (h *Handler) handleSubmitEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req submitEventRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	in, err := req.toSubmitInput()
	if err != nil {
		h.logger.WarnContext(ctx, "invalid event submission",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		writeError(w, err)
		return
	}

	res, err := h.broker.SubmitEvent(ctx, in)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, submitEventResponse{
		EventID:     res.Event.EventID,
		Status:      "accepted",
		Signature:   res.Event.Signature,
		Timestamp:   res.Event.Timestamp,
		EventsCount: res.EventsCount,
		Matched:     len(res.Matched),
	})
}

type submitBatchRequest struct {
	Events []submitEventRequest `json:"events"`
}

type batchItemError struct {
	Index int    `json:"index"`
	Error string `json:"error"`
}

type submitBatchResponse struct {
	Accepted []submitEventResponse `json:"accepted"`
	Rejected []batchItemError      `json:"rejected"`
	Total    int                   `json:"total"`
}

func (h *Handler) handleSubmitBatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req submitBatchRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if len(req.Events) == 0 {
		writeError(w, dErrors.New(dErrors.CodeInvalidInput, "events cannot be empty"))
		return
	}

	resp := submitBatchResponse{
		Accepted: []submitEventResponse{},
		Rejected: []batchItemError{},
		Total:    len(req.Events),
	}
	for i, item := range req.Events {
		in, err := item.toSubmitInput()
		if err != nil {
			resp.Rejected = append(resp.Rejected, batchItemError{Index: i, Error: err.Error()})
			continue
		}
		res, err := h.broker.SubmitEvent(ctx, in)
		if err != nil {
			resp.Rejected = append(resp.Rejected, batchItemError{Index: i, Error: err.Error()})
			continue
		}
		resp.Accepted = append(resp.Accepted, submitEventResponse{
			EventID:     res.Event.EventID,
			Status:      "accepted",
			Signature:   res.Event.Signature,
			Timestamp:   res.Event.Timestamp,
			EventsCount: res.EventsCount,
			Matched:     len(res.Matched),
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

type eventRecordResponse struct {
	EventID   string         `json:"event_id"`
	AppID     string         `json:"app_id"`
	UserID    string         `json:"user_id,omitempty"`
	Intent    string         `json:"intent"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Signature string         `json:"signature"`
}

type listEventsResponse struct {
	Events []eventRecordResponse `json:"events"`
	Total  int                   `json:"total"`
}

// handleListEvents returns the application's accepted events in acceptance
// order. An app with no history gets an empty list, not a 404; absence of
// events is a valid answer here, unlike for compliance reports.
func (h *Handler) handleListEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	appID, err := id.ParseAppID(chi.URLParam(r, "appID"))
	if err != nil {
		writeError(w, err)
		return
	}

	events, err := h.broker.ListEvents(ctx, appID)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := listEventsResponse{
		Events: make([]eventRecordResponse, 0, len(events)),
		Total:  len(events),
	}
	for _, ev := range events {
		resp.Events = append(resp.Events, eventRecordResponse{
			EventID:   ev.EventID,
			AppID:     ev.AppID.String(),
			UserID:    ev.UserID.String(),
			Intent:    ev.Intent.String(),
			Timestamp: ev.Timestamp,
			Metadata:  ev.Metadata,
			Signature: ev.Signature,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

type eventTypesResponse struct {
	EventTypes []string `json:"event_types"`
	Total      int      `json:"total"`
}

func (h *Handler) handleEventTypes(w http.ResponseWriter, _ *http.Request) {
	intents := id.Intents()
	names := make([]string, 0, len(intents))
	for _, intent := range intents {
		names = append(names, intent.String())
	}
	writeJSON(w, http.StatusOK, eventTypesResponse{
		EventTypes: names,
		Total:      len(names),
	})
}
