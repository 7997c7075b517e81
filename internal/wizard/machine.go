package wizard

import (
	"errors"
	"strings"
	"time"

	"subscription-cancellation/internal/domain/model"
)

var (
	// ErrInvalidTransition means the event is not accepted in the current step.
	ErrInvalidTransition = errors.New("event not valid in current step")
	// ErrIncomplete means a step's required answers are missing or too short.
	ErrIncomplete = errors.New("step answers incomplete")
	// ErrInvalidOption means a selection is outside its fixed option set.
	ErrInvalidOption = errors.New("selection outside option set")
	// ErrProcessing means a submission is in flight and controls are disabled.
	ErrProcessing = errors.New("submission in progress")
)

const contradictionError = "If you found your job with MigrateMate, you must have applied for at least 1 role through our platform."

// reasonErrorEntryHold is how long the "please select a reason" banner shows
// after arriving from the survey; reasonErrorSelectHold covers the shorter
// minimum-length reminder when a feedback reason is picked.
const (
	reasonErrorEntryHold  = 3 * time.Second
	reasonErrorSelectHold = 2 * time.Second
)

// Machine evaluates transitions. It carries only a clock so snapshots stay
// pure data; one Machine can drive any number of flows.
type Machine struct {
	now func() time.Time
}

func NewMachine() *Machine {
	return &Machine{now: time.Now}
}

// NewMachineWithClock injects a clock for tests.
func NewMachineWithClock(now func() time.Time) *Machine {
	return &Machine{now: now}
}

// Transition applies one event to a snapshot and returns the next snapshot
// plus an optional effect for the driver to execute. The input snapshot is
// never mutated. Events that are not accepted in the current step return the
// snapshot unchanged together with a sentinel error.
func (m *Machine) Transition(s State, ev Event) (State, *Effect, error) {
	if s.Processing {
		switch ev.(type) {
		case SubmitSucceeded, SubmitFailed:
			// submission resolutions are the only events accepted mid-flight
		default:
			return s, nil, ErrProcessing
		}
	}

	switch ev := ev.(type) {
	case VariantLoaded:
		if s.Step != StepLoading {
			return s, nil, ErrInvalidTransition
		}
		variant := model.DownsellVariant(ev.Variant)
		if !variant.Valid() {
			variant = model.VariantA
		}
		s.Variant = variant
		s.Step = StepJobQuestion
		return s, nil, nil

	case VariantLoadFailed:
		if s.Step != StepLoading {
			return s, nil, ErrInvalidTransition
		}
		// The wizard never blocks on the variant call failing; start on the
		// no-offer branch.
		s.Variant = model.VariantA
		s.Step = StepJobQuestion
		return s, nil, nil

	case AnswerJobQuestion:
		if s.Step != StepJobQuestion {
			return s, nil, ErrInvalidTransition
		}
		found := ev.FoundJob
		s.Answers.FoundJob = &found
		if found {
			// Entering the job-found branch starts its questionnaire fresh.
			s.Answers.JobFound = JobFoundAnswers{}
			s.Answers.JobFoundFeedback = ""
			s.Answers.CompanyProvidingLawyer = ""
			s.Answers.VisaType = ""
			s.InlineError = ""
			s.Step = StepJobFoundStep1
			return s, nil, nil
		}
		if s.Variant == model.VariantB {
			s.Step = StepDownsell
		} else {
			s.Step = StepUsageSurvey
		}
		return s, nil, nil

	case ContinueJobFound:
		if s.Step != StepJobFoundStep1 {
			return s, nil, ErrInvalidTransition
		}
		if !ev.Answers.Complete() {
			return s, nil, ErrIncomplete
		}
		if ev.Answers.Contradictory() {
			// Block with the inline error; answers and step stay as they are.
			s.InlineError = contradictionError
			return s, nil, nil
		}
		s.Answers.JobFound = ev.Answers
		s.InlineError = ""
		s.Step = StepJobFoundStep2
		return s, nil, nil

	case ContinueJobFoundFeedback:
		if s.Step != StepJobFoundStep2 {
			return s, nil, ErrInvalidTransition
		}
		if len(ev.Text) < MinFeedbackChars {
			return s, nil, ErrIncomplete
		}
		s.Answers.JobFoundFeedback = ev.Text
		s.Step = StepJobFoundStep3
		return s, nil, nil

	case CompleteVisaStep:
		if s.Step != StepJobFoundStep3 && s.Step != StepJobFoundStep3Alt {
			return s, nil, ErrInvalidTransition
		}
		if ev.CompanyProvidingLawyer != "Yes" && ev.CompanyProvidingLawyer != "No" {
			return s, nil, ErrInvalidOption
		}
		visa := strings.TrimSpace(ev.VisaType)
		if visa == "" {
			return s, nil, ErrIncomplete
		}
		s.Answers.CompanyProvidingLawyer = ev.CompanyProvidingLawyer
		s.Answers.VisaType = visa
		s.PrevVisaStep = s.Step
		// Both visa entry steps branch on the same rule.
		if ev.CompanyProvidingLawyer == "Yes" {
			s.Step = StepCancellationDone
		} else {
			s.Step = StepNoLawyerDone
		}
		return s, nil, nil

	case AcceptOffer:
		if s.Step != StepDownsell {
			return s, nil, ErrInvalidTransition
		}
		s.Processing = true
		return s, &Effect{
			Kind:       EffectSubmit,
			Submission: &Submission{AcceptedDownsell: true},
		}, nil

	case DeclineOffer:
		if s.Step != StepDownsell {
			return s, nil, ErrInvalidTransition
		}
		s.Step = StepUsageSurvey
		return s, nil, nil

	case TakeOffer:
		if s.Step != StepUsageSurvey && s.Step != StepReason {
			return s, nil, ErrInvalidTransition
		}
		s.Step = StepDownsellSuccess
		return s, nil, nil

	case ContinueFlow:
		if s.Step != StepDownsellSuccess {
			return s, nil, ErrInvalidTransition
		}
		s.Step = StepUsageSurvey
		return s, nil, nil

	case SetSurveyAnswer:
		if s.Step != StepUsageSurvey {
			return s, nil, ErrInvalidTransition
		}
		return m.setSurveyAnswer(s, ev)

	case ContinueSurvey:
		if s.Step != StepUsageSurvey {
			return s, nil, ErrInvalidTransition
		}
		if !s.Answers.Survey.Complete() {
			return s, nil, ErrIncomplete
		}
		s.SurveyCompleted = true
		s.ReasonErrorUntil = m.now().Add(reasonErrorEntryHold)
		s.Step = StepReason
		return s, nil, nil

	case SelectReason:
		if s.Step != StepReason {
			return s, nil, ErrInvalidTransition
		}
		if !ev.Reason.Valid() {
			return s, nil, ErrInvalidOption
		}
		// Switching reasons discards any follow-up state entered so far.
		s.Answers.Reason = ev.Reason
		s.Answers.MaxPrice = ""
		s.Answers.Feedback = ""
		if ev.Reason.NeedsFeedback() {
			s.ReasonErrorUntil = m.now().Add(reasonErrorSelectHold)
		}
		return s, nil, nil

	case SetMaxPrice:
		if s.Step != StepReason || s.Answers.Reason != ReasonTooExpensive {
			return s, nil, ErrInvalidTransition
		}
		s.Answers.MaxPrice = ev.Value
		return s, nil, nil

	case SetReasonFeedback:
		if s.Step != StepReason || !s.Answers.Reason.NeedsFeedback() {
			return s, nil, ErrInvalidTransition
		}
		s.Answers.Feedback = ev.Text
		return s, nil, nil

	case CompleteCancellation:
		if s.Step != StepReason {
			return s, nil, ErrInvalidTransition
		}
		if !s.ReasonComplete() {
			return s, nil, ErrIncomplete
		}
		s.Processing = true
		return s, &Effect{
			Kind: EffectSubmit,
			Submission: &Submission{
				AcceptedDownsell: false,
				Reason:           string(s.Answers.Reason),
			},
		}, nil

	case SubmitSucceeded:
		if !s.Processing {
			return s, nil, ErrInvalidTransition
		}
		s.Processing = false
		switch s.Step {
		case StepDownsell:
			s.Step = StepDownsellSuccess
		case StepReason:
			s.Step = StepDownsellCancelled
		default:
			return s, nil, ErrInvalidTransition
		}
		return s, nil, nil

	case SubmitFailed:
		if !s.Processing {
			return s, nil, ErrInvalidTransition
		}
		// Stay put; retry is a manual re-click.
		s.Processing = false
		return s, nil, nil

	case Back:
		return m.back(s)
	}

	return s, nil, ErrInvalidTransition
}

func (m *Machine) setSurveyAnswer(s State, ev SetSurveyAnswer) (State, *Effect, error) {
	var options []string
	switch ev.Question {
	case SurveyRolesApplied:
		options = AppliedOptions
	case SurveyCompaniesEmailed:
		options = EmailedOptions
	case SurveyCompaniesInterviewed:
		options = InterviewedOptions
	default:
		return s, nil, ErrInvalidOption
	}
	valid := false
	for _, o := range options {
		if ev.Value == o {
			valid = true
			break
		}
	}
	if !valid {
		return s, nil, ErrInvalidOption
	}
	switch ev.Question {
	case SurveyRolesApplied:
		s.Answers.Survey.RolesApplied = ev.Value
	case SurveyCompaniesEmailed:
		s.Answers.Survey.CompaniesEmailed = ev.Value
	case SurveyCompaniesInterviewed:
		s.Answers.Survey.CompaniesInterviewed = ev.Value
	}
	return s, nil, nil
}

func (m *Machine) back(s State) (State, *Effect, error) {
	switch s.Step {
	case StepJobFoundStep1:
		s.InlineError = ""
		s.Step = StepJobQuestion
	case StepJobFoundStep2:
		s.Step = StepJobFoundStep1
	case StepJobFoundStep3, StepJobFoundStep3Alt:
		s.Step = StepJobFoundStep2
	case StepDownsell:
		s.Step = StepJobQuestion
	case StepDownsellSuccess:
		s.Step = StepDownsell
	case StepUsageSurvey:
		if s.Variant == model.VariantB {
			s.Step = StepDownsell
		} else {
			s.Step = StepJobQuestion
		}
	case StepReason:
		// Full rollback of the reason step: completion flag and every
		// follow-up field reset; the survey answers themselves survive.
		s.SurveyCompleted = false
		s.Answers.Reason = ""
		s.Answers.MaxPrice = ""
		s.Answers.Feedback = ""
		s.ReasonErrorUntil = time.Time{}
		s.Step = StepUsageSurvey
	default:
		return s, nil, ErrInvalidTransition
	}
	return s, nil, nil
}
