package application

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"subscription-cancellation/internal/wizard"
)

// FlowSession drives one user's wizard against the cancellation API. It owns
// the snapshot, executes the effects the machine emits, and carries the CSRF
// token between the variant fetch and the final submission.
type FlowSession struct {
	machine *wizard.Machine
	client  *http.Client
	baseURL string
	userID  string

	state          wizard.State
	csrfToken      string
	variant        string
	subscriptionID string
}

func NewFlowSession(baseURL, userID string, client *http.Client) *FlowSession {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	state, _ := wizard.NewState()
	return &FlowSession{
		machine: wizard.NewMachine(),
		client:  client,
		baseURL: baseURL,
		userID:  userID,
		state:   state,
	}
}

// State returns the current snapshot.
func (s *FlowSession) State() wizard.State { return s.state }

// Start fetches the variant and moves the wizard off the loading screen. A
// failed fetch is not fatal; the wizard continues on its fallback branch.
func (s *FlowSession) Start(ctx context.Context) error {
	payload, err := s.fetchVariant(ctx)
	if err != nil {
		s.state, _, _ = s.machine.Transition(s.state, wizard.VariantLoadFailed{})
		return err
	}
	s.csrfToken = payload.CSRFToken
	s.variant = payload.Variant
	s.subscriptionID = payload.SubscriptionID
	next, _, terr := s.machine.Transition(s.state, wizard.VariantLoaded{Variant: payload.Variant, CSRFToken: payload.CSRFToken})
	if terr != nil {
		return terr
	}
	s.state = next
	return nil
}

// Apply runs one event through the machine and executes any resulting
// submission against the API.
func (s *FlowSession) Apply(ctx context.Context, ev wizard.Event) error {
	next, effect, err := s.machine.Transition(s.state, ev)
	if err != nil {
		return err
	}
	s.state = next

	if effect == nil || effect.Kind != wizard.EffectSubmit {
		return nil
	}

	if err := s.submit(ctx, effect.Submission); err != nil {
		s.state, _, _ = s.machine.Transition(s.state, wizard.SubmitFailed{})
		return err
	}
	s.state, _, err = s.machine.Transition(s.state, wizard.SubmitSucceeded{})
	return err
}

type variantPayload struct {
	Variant        string `json:"variant"`
	SubscriptionID string `json:"subscriptionId"`
	CSRFToken      string `json:"csrfToken"`
}

func (s *FlowSession) fetchVariant(ctx context.Context) (*variantPayload, error) {
	url := fmt.Sprintf("%s/api/cancellation?userId=%s", s.baseURL, s.userID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("variant fetch: status %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}

	var payload variantPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("variant fetch: decode: %w", err)
	}
	return &payload, nil
}

func (s *FlowSession) submit(ctx context.Context, sub *wizard.Submission) error {
	// An accepted offer has no survey reason; the record keeps it absent.
	body, err := json.Marshal(map[string]interface{}{
		"userId":           s.userID,
		"subscriptionId":   s.subscriptionID,
		"downsellVariant":  s.variant,
		"reason":           sub.Reason,
		"acceptedDownsell": sub.AcceptedDownsell,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/api/cancellation", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-csrf-token", s.csrfToken)

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("submission: status %d: %s", resp.StatusCode, bytes.TrimSpace(raw))
	}
	return nil
}
