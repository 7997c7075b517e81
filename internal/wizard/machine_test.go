//go:build !integration

package wizard_test

import (
	"errors"
	"testing"
	"time"

	"subscription-cancellation/internal/domain/model"
	"subscription-cancellation/internal/wizard"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// apply runs an event and fails the test on any transition error.
func apply(t *testing.T, m *wizard.Machine, s wizard.State, ev wizard.Event) (wizard.State, *wizard.Effect) {
	t.Helper()
	next, eff, err := m.Transition(s, ev)
	if err != nil {
		t.Fatalf("transition %T from %q: %v", ev, s.Step, err)
	}
	return next, eff
}

func startFlow(t *testing.T, m *wizard.Machine, variant string) wizard.State {
	t.Helper()
	s, eff := wizard.NewState()
	if eff.Kind != wizard.EffectFetchVariant {
		t.Fatalf("expected fetch-variant effect on a fresh flow, got %v", eff.Kind)
	}
	s, _ = apply(t, m, s, wizard.VariantLoaded{Variant: variant, CSRFToken: "tok"})
	return s
}

func completeSurvey(t *testing.T, m *wizard.Machine, s wizard.State) wizard.State {
	t.Helper()
	s, _ = apply(t, m, s, wizard.SetSurveyAnswer{Question: wizard.SurveyRolesApplied, Value: "1-5"})
	s, _ = apply(t, m, s, wizard.SetSurveyAnswer{Question: wizard.SurveyCompaniesEmailed, Value: "6-20"})
	s, _ = apply(t, m, s, wizard.SetSurveyAnswer{Question: wizard.SurveyCompaniesInterviewed, Value: "1-2"})
	s, _ = apply(t, m, s, wizard.ContinueSurvey{})
	return s
}

func TestMachineVariantLoading(t *testing.T) {
	m := wizard.NewMachine()

	t.Run("should move to the job question once the variant arrives", func(t *testing.T) {
		s := startFlow(t, m, "B")
		if s.Step != wizard.StepJobQuestion {
			t.Fatalf("expected %q, got %q", wizard.StepJobQuestion, s.Step)
		}
		if s.Variant != model.VariantB {
			t.Fatalf("expected variant B, got %q", s.Variant)
		}
	})

	t.Run("should fall back to variant A when the load fails", func(t *testing.T) {
		s, _ := wizard.NewState()
		s, _ = apply(t, m, s, wizard.VariantLoadFailed{})
		if s.Step != wizard.StepJobQuestion || s.Variant != model.VariantA {
			t.Fatalf("expected job question on variant A, got %q / %q", s.Step, s.Variant)
		}
	})

	t.Run("should normalize an unknown variant to A", func(t *testing.T) {
		s := startFlow(t, m, "Z")
		if s.Variant != model.VariantA {
			t.Fatalf("expected variant A, got %q", s.Variant)
		}
	})

	t.Run("should reject a second variant load", func(t *testing.T) {
		s := startFlow(t, m, "A")
		_, _, err := m.Transition(s, wizard.VariantLoaded{Variant: "B"})
		if !errors.Is(err, wizard.ErrInvalidTransition) {
			t.Fatalf("expected ErrInvalidTransition, got %v", err)
		}
	})
}

func TestMachineDownsellPath(t *testing.T) {
	m := wizard.NewMachine()

	t.Run("should offer the downsell to variant B before the survey", func(t *testing.T) {
		s := startFlow(t, m, "B")
		s, _ = apply(t, m, s, wizard.AnswerJobQuestion{FoundJob: false})
		if s.Step != wizard.StepDownsell {
			t.Fatalf("expected %q, got %q", wizard.StepDownsell, s.Step)
		}
	})

	t.Run("should skip the downsell for variant A", func(t *testing.T) {
		s := startFlow(t, m, "A")
		s, _ = apply(t, m, s, wizard.AnswerJobQuestion{FoundJob: false})
		if s.Step != wizard.StepUsageSurvey {
			t.Fatalf("expected %q, got %q", wizard.StepUsageSurvey, s.Step)
		}
	})

	t.Run("should submit an accepted offer and finish on downsell-success", func(t *testing.T) {
		s := startFlow(t, m, "B")
		s, _ = apply(t, m, s, wizard.AnswerJobQuestion{FoundJob: false})
		s, eff := apply(t, m, s, wizard.AcceptOffer{})
		if eff == nil || eff.Kind != wizard.EffectSubmit {
			t.Fatal("expected a submit effect")
		}
		if !eff.Submission.AcceptedDownsell {
			t.Fatal("expected acceptedDownsell=true on the offer submission")
		}
		if !s.Processing {
			t.Fatal("expected processing flag while the submission is in flight")
		}
		s, _ = apply(t, m, s, wizard.SubmitSucceeded{})
		if s.Step != wizard.StepDownsellSuccess || s.Processing {
			t.Fatalf("expected %q with processing cleared, got %q", wizard.StepDownsellSuccess, s.Step)
		}
	})

	t.Run("should block everything but submit resolutions while processing", func(t *testing.T) {
		s := startFlow(t, m, "B")
		s, _ = apply(t, m, s, wizard.AnswerJobQuestion{FoundJob: false})
		s, _ = apply(t, m, s, wizard.AcceptOffer{})
		_, _, err := m.Transition(s, wizard.Back{})
		if !errors.Is(err, wizard.ErrProcessing) {
			t.Fatalf("expected ErrProcessing, got %v", err)
		}
	})

	t.Run("should stay on the downsell after a failed submission", func(t *testing.T) {
		s := startFlow(t, m, "B")
		s, _ = apply(t, m, s, wizard.AnswerJobQuestion{FoundJob: false})
		s, _ = apply(t, m, s, wizard.AcceptOffer{})
		s, _ = apply(t, m, s, wizard.SubmitFailed{})
		if s.Step != wizard.StepDownsell || s.Processing {
			t.Fatalf("expected to remain on %q, got %q", wizard.StepDownsell, s.Step)
		}
	})

	t.Run("should reach the survey through a declined offer", func(t *testing.T) {
		s := startFlow(t, m, "B")
		s, _ = apply(t, m, s, wizard.AnswerJobQuestion{FoundJob: false})
		s, _ = apply(t, m, s, wizard.DeclineOffer{})
		if s.Step != wizard.StepUsageSurvey {
			t.Fatalf("expected %q, got %q", wizard.StepUsageSurvey, s.Step)
		}
	})

	t.Run("should navigate to downsell-success on a late take-offer without submitting", func(t *testing.T) {
		s := startFlow(t, m, "B")
		s, _ = apply(t, m, s, wizard.AnswerJobQuestion{FoundJob: false})
		s, _ = apply(t, m, s, wizard.DeclineOffer{})
		s, eff := apply(t, m, s, wizard.TakeOffer{})
		if eff != nil {
			t.Fatal("take-offer must not emit a submission")
		}
		if s.Step != wizard.StepDownsellSuccess {
			t.Fatalf("expected %q, got %q", wizard.StepDownsellSuccess, s.Step)
		}
	})
}

func TestMachineSurveyAndReason(t *testing.T) {
	base := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	m := wizard.NewMachineWithClock(fixedClock(base))

	t.Run("should reject survey values outside the option sets", func(t *testing.T) {
		s := startFlow(t, m, "A")
		s, _ = apply(t, m, s, wizard.AnswerJobQuestion{FoundJob: false})
		_, _, err := m.Transition(s, wizard.SetSurveyAnswer{Question: wizard.SurveyRolesApplied, Value: "lots"})
		if !errors.Is(err, wizard.ErrInvalidOption) {
			t.Fatalf("expected ErrInvalidOption, got %v", err)
		}
	})

	t.Run("should gate the reason step on a complete survey", func(t *testing.T) {
		s := startFlow(t, m, "A")
		s, _ = apply(t, m, s, wizard.AnswerJobQuestion{FoundJob: false})
		s, _ = apply(t, m, s, wizard.SetSurveyAnswer{Question: wizard.SurveyRolesApplied, Value: "0"})
		_, _, err := m.Transition(s, wizard.ContinueSurvey{})
		if !errors.Is(err, wizard.ErrIncomplete) {
			t.Fatalf("expected ErrIncomplete, got %v", err)
		}
	})

	t.Run("should show the reason banner briefly after entering from the survey", func(t *testing.T) {
		s := startFlow(t, m, "A")
		s, _ = apply(t, m, s, wizard.AnswerJobQuestion{FoundJob: false})
		s = completeSurvey(t, m, s)
		if s.Step != wizard.StepReason || !s.SurveyCompleted {
			t.Fatalf("expected the reason step with the survey marked complete, got %q", s.Step)
		}
		if !s.ReasonErrorVisible(base.Add(2 * time.Second)) {
			t.Fatal("expected the banner to still be visible at +2s")
		}
		if s.ReasonErrorVisible(base.Add(4 * time.Second)) {
			t.Fatal("expected the banner gone after 3s")
		}
	})

	t.Run("should require a max price for the too-expensive reason", func(t *testing.T) {
		s := startFlow(t, m, "A")
		s, _ = apply(t, m, s, wizard.AnswerJobQuestion{FoundJob: false})
		s = completeSurvey(t, m, s)
		s, _ = apply(t, m, s, wizard.SelectReason{Reason: wizard.ReasonTooExpensive})
		_, _, err := m.Transition(s, wizard.CompleteCancellation{})
		if !errors.Is(err, wizard.ErrIncomplete) {
			t.Fatalf("expected ErrIncomplete without a price, got %v", err)
		}
		s, _ = apply(t, m, s, wizard.SetMaxPrice{Value: "15"})
		s, eff := apply(t, m, s, wizard.CompleteCancellation{})
		if eff == nil || eff.Submission == nil || eff.Submission.AcceptedDownsell {
			t.Fatal("expected a cancellation submission with acceptedDownsell=false")
		}
		if eff.Submission.Reason != string(wizard.ReasonTooExpensive) {
			t.Fatalf("unexpected submitted reason %q", eff.Submission.Reason)
		}
		s, _ = apply(t, m, s, wizard.SubmitSucceeded{})
		if s.Step != wizard.StepDownsellCancelled {
			t.Fatalf("expected %q, got %q", wizard.StepDownsellCancelled, s.Step)
		}
	})

	t.Run("should require 25 characters of feedback for feedback reasons", func(t *testing.T) {
		s := startFlow(t, m, "A")
		s, _ = apply(t, m, s, wizard.AnswerJobQuestion{FoundJob: false})
		s = completeSurvey(t, m, s)
		s, _ = apply(t, m, s, wizard.SelectReason{Reason: wizard.ReasonPlatformNotHelpful})
		s, _ = apply(t, m, s, wizard.SetReasonFeedback{Text: "too short"})
		_, _, err := m.Transition(s, wizard.CompleteCancellation{})
		if !errors.Is(err, wizard.ErrIncomplete) {
			t.Fatalf("expected ErrIncomplete for short feedback, got %v", err)
		}
		s, _ = apply(t, m, s, wizard.SetReasonFeedback{Text: "the search filters never matched my target market"})
		if _, eff := apply(t, m, s, wizard.CompleteCancellation{}); eff == nil {
			t.Fatal("expected a submission once feedback is long enough")
		}
	})

	t.Run("should clear follow-ups when the reason changes", func(t *testing.T) {
		s := startFlow(t, m, "A")
		s, _ = apply(t, m, s, wizard.AnswerJobQuestion{FoundJob: false})
		s = completeSurvey(t, m, s)
		s, _ = apply(t, m, s, wizard.SelectReason{Reason: wizard.ReasonTooExpensive})
		s, _ = apply(t, m, s, wizard.SetMaxPrice{Value: "20"})
		s, _ = apply(t, m, s, wizard.SelectReason{Reason: wizard.ReasonNotEnoughJobs})
		if s.Answers.MaxPrice != "" {
			t.Fatalf("expected the max price cleared, got %q", s.Answers.MaxPrice)
		}
	})

	t.Run("should roll back the reason step fully on back", func(t *testing.T) {
		s := startFlow(t, m, "A")
		s, _ = apply(t, m, s, wizard.AnswerJobQuestion{FoundJob: false})
		s = completeSurvey(t, m, s)
		s, _ = apply(t, m, s, wizard.SelectReason{Reason: wizard.ReasonTooExpensive})
		s, _ = apply(t, m, s, wizard.SetMaxPrice{Value: "12"})
		s, _ = apply(t, m, s, wizard.Back{})
		if s.Step != wizard.StepUsageSurvey {
			t.Fatalf("expected %q, got %q", wizard.StepUsageSurvey, s.Step)
		}
		if s.SurveyCompleted || s.Answers.Reason != "" || s.Answers.MaxPrice != "" {
			t.Fatal("expected reason state rolled back")
		}
		if s.Answers.Survey.RolesApplied != "1-5" {
			t.Fatal("expected survey answers to survive the rollback")
		}
	})

	t.Run("should return variant B to the downsell on back from the survey", func(t *testing.T) {
		s := startFlow(t, m, "B")
		s, _ = apply(t, m, s, wizard.AnswerJobQuestion{FoundJob: false})
		s, _ = apply(t, m, s, wizard.DeclineOffer{})
		s, _ = apply(t, m, s, wizard.Back{})
		if s.Step != wizard.StepDownsell {
			t.Fatalf("expected %q, got %q", wizard.StepDownsell, s.Step)
		}
	})
}

func TestMachineJobFoundPath(t *testing.T) {
	m := wizard.NewMachine()

	goodAnswers := wizard.JobFoundAnswers{
		FoundWithPlatform:    "Yes",
		RolesApplied:         "1-5",
		CompaniesEmailed:     "0",
		CompaniesInterviewed: "1-2",
	}

	t.Run("should block the contradictory first step without changing state", func(t *testing.T) {
		s := startFlow(t, m, "A")
		s, _ = apply(t, m, s, wizard.AnswerJobQuestion{FoundJob: true})
		bad := goodAnswers
		bad.RolesApplied = "0"
		next, _, err := m.Transition(s, wizard.ContinueJobFound{Answers: bad})
		if err != nil {
			t.Fatalf("contradiction must not be a transition error: %v", err)
		}
		if next.Step != wizard.StepJobFoundStep1 {
			t.Fatalf("expected to stay on %q, got %q", wizard.StepJobFoundStep1, next.Step)
		}
		if next.InlineError == "" {
			t.Fatal("expected an inline error message")
		}
		if next.Answers.JobFound != (wizard.JobFoundAnswers{}) {
			t.Fatal("expected the contradictory answers not to be recorded")
		}
	})

	t.Run("should walk step1 through the visa step to completion", func(t *testing.T) {
		s := startFlow(t, m, "A")
		s, _ = apply(t, m, s, wizard.AnswerJobQuestion{FoundJob: true})
		s, _ = apply(t, m, s, wizard.ContinueJobFound{Answers: goodAnswers})
		if s.Step != wizard.StepJobFoundStep2 || s.InlineError != "" {
			t.Fatalf("expected %q with no inline error, got %q", wizard.StepJobFoundStep2, s.Step)
		}
		s, _ = apply(t, m, s, wizard.ContinueJobFoundFeedback{Text: "found the listing through the weekly digest email"})
		s, _ = apply(t, m, s, wizard.CompleteVisaStep{CompanyProvidingLawyer: "Yes", VisaType: "H-1B"})
		if s.Step != wizard.StepCancellationDone {
			t.Fatalf("expected %q, got %q", wizard.StepCancellationDone, s.Step)
		}
	})

	t.Run("should route to the no-lawyer completion when the company is not helping", func(t *testing.T) {
		s := startFlow(t, m, "A")
		s, _ = apply(t, m, s, wizard.AnswerJobQuestion{FoundJob: true})
		s, _ = apply(t, m, s, wizard.ContinueJobFound{Answers: goodAnswers})
		s, _ = apply(t, m, s, wizard.ContinueJobFoundFeedback{Text: "found the listing through the weekly digest email"})
		s, _ = apply(t, m, s, wizard.CompleteVisaStep{CompanyProvidingLawyer: "No", VisaType: "O-1"})
		if s.Step != wizard.StepNoLawyerDone {
			t.Fatalf("expected %q, got %q", wizard.StepNoLawyerDone, s.Step)
		}
		if s.PrevVisaStep != wizard.StepJobFoundStep3 {
			t.Fatalf("expected the originating visa step recorded, got %q", s.PrevVisaStep)
		}
	})

	t.Run("should enforce the feedback minimum on step two", func(t *testing.T) {
		s := startFlow(t, m, "A")
		s, _ = apply(t, m, s, wizard.AnswerJobQuestion{FoundJob: true})
		s, _ = apply(t, m, s, wizard.ContinueJobFound{Answers: goodAnswers})
		_, _, err := m.Transition(s, wizard.ContinueJobFoundFeedback{Text: "short"})
		if !errors.Is(err, wizard.ErrIncomplete) {
			t.Fatalf("expected ErrIncomplete, got %v", err)
		}
	})

	t.Run("should reset the branch answers when re-entering it", func(t *testing.T) {
		s := startFlow(t, m, "A")
		s, _ = apply(t, m, s, wizard.AnswerJobQuestion{FoundJob: true})
		s, _ = apply(t, m, s, wizard.ContinueJobFound{Answers: goodAnswers})
		s, _ = apply(t, m, s, wizard.Back{})
		s, _ = apply(t, m, s, wizard.Back{})
		s, _ = apply(t, m, s, wizard.AnswerJobQuestion{FoundJob: true})
		if s.Answers.JobFound != (wizard.JobFoundAnswers{}) {
			t.Fatal("expected the questionnaire reset on re-entry")
		}
	})

	t.Run("should not allow back out of a terminal step", func(t *testing.T) {
		s := startFlow(t, m, "A")
		s, _ = apply(t, m, s, wizard.AnswerJobQuestion{FoundJob: true})
		s, _ = apply(t, m, s, wizard.ContinueJobFound{Answers: goodAnswers})
		s, _ = apply(t, m, s, wizard.ContinueJobFoundFeedback{Text: "found the listing through the weekly digest email"})
		s, _ = apply(t, m, s, wizard.CompleteVisaStep{CompanyProvidingLawyer: "Yes", VisaType: "H-1B"})
		_, _, err := m.Transition(s, wizard.Back{})
		if !errors.Is(err, wizard.ErrInvalidTransition) {
			t.Fatalf("expected ErrInvalidTransition, got %v", err)
		}
	})
}
