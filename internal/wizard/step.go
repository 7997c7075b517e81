// Package wizard holds the client-resident state machine for the
// subscription-cancellation flow: an explicit step enum, a tagged-union event
// set, and a pure transition function over immutable state records.
package wizard

type Step string

const (
	StepLoading             Step = "loading"
	StepJobQuestion         Step = "job-question"
	StepJobFoundStep1       Step = "job-found-step1"
	StepJobFoundStep2       Step = "job-found-step2"
	StepJobFoundStep3       Step = "job-found-step3"
	StepJobFoundStep3Alt    Step = "job-found-step3-feedback"
	StepDownsell            Step = "downsell"
	StepDownsellSuccess     Step = "downsell-success"
	StepUsageSurvey         Step = "usage-survey"
	StepReason              Step = "reason"
	StepCancellationDone    Step = "cancellation-complete"
	StepNoLawyerDone        Step = "job-found-no-lawyer-completion"
	StepDownsellCancelled   Step = "downsell-cancellation-complete"
)

// Terminal reports whether the step is a final display state; the only action
// left there is leaving the flow.
func (s Step) Terminal() bool {
	switch s {
	case StepCancellationDone, StepNoLawyerDone, StepDownsellCancelled:
		return true
	}
	return false
}

// transitions is the directed edge set of the flow: every step maps to the
// complete set of steps reachable from it by any event. The transition
// function never produces an edge outside this table; tests assert that.
var transitions = map[Step][]Step{
	StepLoading:           {StepJobQuestion},
	StepJobQuestion:       {StepJobFoundStep1, StepDownsell, StepUsageSurvey},
	StepJobFoundStep1:     {StepJobFoundStep2, StepJobQuestion},
	StepJobFoundStep2:     {StepJobFoundStep3, StepJobFoundStep1},
	StepJobFoundStep3:     {StepCancellationDone, StepNoLawyerDone, StepJobFoundStep2},
	StepJobFoundStep3Alt:  {StepCancellationDone, StepNoLawyerDone, StepJobFoundStep2},
	StepDownsell:          {StepDownsellSuccess, StepUsageSurvey, StepJobQuestion},
	StepDownsellSuccess:   {StepUsageSurvey, StepDownsell},
	StepUsageSurvey:       {StepReason, StepDownsellSuccess, StepDownsell, StepJobQuestion},
	StepReason:            {StepDownsellCancelled, StepDownsellSuccess, StepUsageSurvey},
	StepCancellationDone:  {},
	StepNoLawyerDone:      {},
	StepDownsellCancelled: {},
}

// CanTransition reports whether the flow graph has an edge from one step to
// another. Staying on the same step is always allowed.
func CanTransition(from, to Step) bool {
	if from == to {
		return true
	}
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Reason is one of the fixed cancellation reasons offered on the final step.
type Reason string

const (
	ReasonTooExpensive       Reason = "Too expensive"
	ReasonPlatformNotHelpful Reason = "Platform not helpful"
	ReasonNotEnoughJobs      Reason = "Not enough relevant jobs"
	ReasonDecidedNotToMove   Reason = "Decided not to move"
	ReasonOther              Reason = "Other"
)

// Reasons lists the selectable options in display order.
var Reasons = []Reason{
	ReasonTooExpensive,
	ReasonPlatformNotHelpful,
	ReasonNotEnoughJobs,
	ReasonDecidedNotToMove,
	ReasonOther,
}

func (r Reason) Valid() bool {
	for _, known := range Reasons {
		if r == known {
			return true
		}
	}
	return false
}

// NeedsFeedback reports whether the reason reveals a free-text follow-up that
// must reach MinFeedbackChars before the flow may complete.
func (r Reason) NeedsFeedback() bool {
	switch r {
	case ReasonPlatformNotHelpful, ReasonNotEnoughJobs, ReasonDecidedNotToMove, ReasonOther:
		return true
	}
	return false
}

// Multiple-choice option sets shared by the usage survey and the job-found
// questionnaire.
var (
	AppliedOptions     = []string{"0", "1-5", "6-20", "20+"}
	EmailedOptions     = []string{"0", "1-5", "6-20", "20+"}
	InterviewedOptions = []string{"0", "1-2", "3-5", "5+"}
)

// MinFeedbackChars is the minimum free-text length for every feedback field in
// the flow.
const MinFeedbackChars = 25
