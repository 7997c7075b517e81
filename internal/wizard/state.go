package wizard

import (
	"strings"
	"time"

	"subscription-cancellation/internal/domain/model"
)

// JobFoundAnswers are the four required selections on the first job-found step.
type JobFoundAnswers struct {
	FoundWithPlatform    string // "Yes" or "No"
	RolesApplied         string
	CompaniesEmailed     string
	CompaniesInterviewed string
}

func (a JobFoundAnswers) Complete() bool {
	return a.FoundWithPlatform != "" && a.RolesApplied != "" &&
		a.CompaniesEmailed != "" && a.CompaniesInterviewed != ""
}

// Contradictory reports the impossible combination the step blocks on: the job
// was found through the platform while zero roles were applied for through it.
func (a JobFoundAnswers) Contradictory() bool {
	return a.FoundWithPlatform == "Yes" && a.RolesApplied == "0"
}

// SurveyAnswers are the three required usage-survey selections.
type SurveyAnswers struct {
	RolesApplied         string
	CompaniesEmailed     string
	CompaniesInterviewed string
}

func (a SurveyAnswers) Complete() bool {
	return a.RolesApplied != "" && a.CompaniesEmailed != "" && a.CompaniesInterviewed != ""
}

// Answers accumulates everything the user has entered across steps. Values
// survive backward navigation except where a step's rollback rule says
// otherwise.
type Answers struct {
	FoundJob *bool

	JobFound         JobFoundAnswers
	JobFoundFeedback string

	CompanyProvidingLawyer string
	VisaType               string

	Survey SurveyAnswers

	Reason   Reason
	MaxPrice string
	Feedback string
}

// State is one immutable snapshot of the flow. Transitions copy it; callers
// never mutate a snapshot they have handed out.
type State struct {
	Step    Step
	Variant model.DownsellVariant

	Answers Answers

	// SurveyCompleted mirrors the progress indicator: set when the survey's
	// continue action fires, cleared by the reason step's rollback.
	SurveyCompleted bool

	// Processing disables the triggering controls while a submission is in
	// flight.
	Processing bool

	// PrevVisaStep remembers which visa entry step produced a completion
	// screen.
	PrevVisaStep Step

	// ReasonErrorUntil is the auto-dismiss deadline for the transient
	// "select a reason" / "25 characters" error banner.
	ReasonErrorUntil time.Time

	// InlineError is the step-local validation message (the job-found
	// contradiction). Cleared whenever the step is left or re-answered.
	InlineError string
}

// NewState returns the initial loading snapshot; the caller owes the machine a
// VariantLoaded or VariantLoadFailed event for the returned fetch effect.
func NewState() (State, Effect) {
	return State{Step: StepLoading}, Effect{Kind: EffectFetchVariant}
}

// ReasonErrorVisible reports whether the transient reason-error banner is
// still showing at the given instant.
func (s State) ReasonErrorVisible(now time.Time) bool {
	return now.Before(s.ReasonErrorUntil)
}

// ReasonComplete reports whether the selected reason's follow-up rule is
// satisfied, which gates the completion action.
func (s State) ReasonComplete() bool {
	switch {
	case s.Answers.Reason == "":
		return false
	case s.Answers.Reason == ReasonTooExpensive:
		return strings.TrimSpace(s.Answers.MaxPrice) != ""
	case s.Answers.Reason.NeedsFeedback():
		return len(s.Answers.Feedback) >= MinFeedbackChars
	}
	return false
}
