package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"subscription-cancellation/internal/domain"
	"subscription-cancellation/internal/infra/logging"
	"subscription-cancellation/internal/infra/security"
)

type variantResponse struct {
	Variant        string `json:"variant"`
	SubscriptionID string `json:"subscriptionId"`
	CSRFToken      string `json:"csrfToken"`
}

type submitResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// handleGetVariant assigns (or replays) the caller's downsell variant and
// issues the CSRF token the submission must echo back.
func (s *Server) handleGetVariant(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := logging.With(ctx, s.log)

	userID := r.URL.Query().Get("userId")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "userId query parameter is required")
		return
	}
	if !s.validator.IsValidUUID(userID) {
		writeError(w, http.StatusBadRequest, "userId must be a valid UUID")
		return
	}
	ctx = logging.WithUserID(ctx, userID)

	variant, err := s.cancelUC.GetOrCreateDownsellVariant(ctx, userID)
	if err != nil {
		l.Error().Err(err).Msg("variant assignment failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	// The submission payload echoes the record's subscription id back. When
	// assignment fell back without persisting a record, the id stays empty
	// rather than failing the fetch.
	var subscriptionID string
	if record, err := s.cancelUC.FindByUser(ctx, userID); err == nil {
		subscriptionID = record.SubscriptionID
	} else {
		l.Warn().Err(err).Msg("no cancellation record after variant assignment")
	}

	token, err := s.csrf.Issue(ctx, SessionKeyFrom(ctx))
	if err != nil {
		l.Error().Err(err).Msg("csrf issue failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	w.Header().Set("X-CSRF-Token", token)
	writeJSON(w, http.StatusOK, variantResponse{
		Variant:        string(variant),
		SubscriptionID: subscriptionID,
		CSRFToken:      token,
	})
}

// handleSubmit records the flow outcome. The CSRF guard has already run.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := logging.With(ctx, s.log)

	var payload security.SubmitPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if err := s.validator.ValidateSubmit(&payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	ctx = logging.WithUserID(ctx, payload.UserID)

	accepted := *payload.AcceptedDownsell
	if err := s.cancelUC.CompleteCancellation(ctx, payload.UserID, payload.Reason, accepted); err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrNoActiveSubscription) {
			writeError(w, http.StatusNotFound, "no cancellation in progress for this user")
			return
		}
		l.Error().Err(err).Msg("cancellation completion failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	msg := "Cancellation completed"
	if accepted {
		msg = "Downsell accepted"
	}
	writeJSON(w, http.StatusOK, submitResponse{Success: true, Message: msg})
}
