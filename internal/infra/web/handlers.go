package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"subscription-cancellation/internal/domain"
	"subscription-cancellation/internal/domain/ports/repository"
	"subscription-cancellation/internal/usecase"
)

type cancellationView struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	SubscriptionID   string    `json:"subscription_id"`
	DownsellVariant  string    `json:"downsell_variant"`
	Reason           string    `json:"reason"`
	AcceptedDownsell bool      `json:"accepted_downsell"`
	CreatedAt        time.Time `json:"created_at"`
}

// cancellationGetHandler serves one user's experiment record.
func cancellationGetHandler(cancelUC usecase.CancellationUseCase, userID string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, err := cancelUC.FindByUser(r.Context(), userID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				http.Error(w, "Cancellation not found", http.StatusNotFound)
				return
			}
			http.Error(w, "Failed to get cancellation", http.StatusInternalServerError)
			return
		}

		view := cancellationView{
			ID:               rec.ID,
			UserID:           rec.UserID,
			SubscriptionID:   rec.SubscriptionID,
			DownsellVariant:  string(rec.DownsellVariant),
			Reason:           rec.Reason,
			AcceptedDownsell: rec.AcceptedDownsell,
			CreatedAt:        rec.CreatedAt,
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(view)
	}
}

// usersListHandler serves a paginated user listing.
func usersListHandler(users repository.UserRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
		if err != nil || limit <= 0 || limit > 200 {
			limit = 50
		}

		list, err := users.List(r.Context(), repository.NoTX, offset, limit)
		if err != nil {
			http.Error(w, "Failed to list users", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(list)
	}
}
