package wizard

// Event is the tagged union of user and effect-resolution actions the machine
// reacts to. Exactly one concrete type per action keeps transitions total and
// easy to test.
type Event interface{ isEvent() }

// VariantLoaded resolves the initial fetch effect: the server assigned (or
// replayed) the user's experiment bucket.
type VariantLoaded struct {
	Variant   string // "A" or "B"
	CSRFToken string
}

// VariantLoadFailed resolves the initial fetch effect after an error. The flow
// starts anyway on the no-offer branch.
type VariantLoadFailed struct{}

// AnswerJobQuestion records the opening yes/no answer.
type AnswerJobQuestion struct{ FoundJob bool }

// AcceptOffer takes the 50%-off offer on the downsell screen and submits the
// accepted-downsell outcome.
type AcceptOffer struct{}

// DeclineOffer turns the offer down and moves on to the usage survey.
type DeclineOffer struct{}

// TakeOffer jumps to the offer-accepted screen from the survey or reason step
// (the late "Get 50% off" action).
type TakeOffer struct{}

// ContinueFlow advances from the offer-accepted screen back into the flow.
type ContinueFlow struct{}

// SetSurveyAnswer records one of the three usage-survey selections.
type SetSurveyAnswer struct {
	Question SurveyQuestion
	Value    string
}

// ContinueSurvey moves from the survey to the reason step; all three survey
// answers must be present.
type ContinueSurvey struct{}

// SelectReason picks a cancellation reason; switching reasons clears every
// follow-up field.
type SelectReason struct{ Reason Reason }

// SetMaxPrice updates the "Too expensive" follow-up amount.
type SetMaxPrice struct{ Value string }

// SetReasonFeedback updates the free-text follow-up for feedback reasons.
type SetReasonFeedback struct{ Text string }

// CompleteCancellation submits the final non-accepted outcome from the reason
// step; the selected reason's follow-up rule must be satisfied.
type CompleteCancellation struct{}

// ContinueJobFound submits the four job-found questionnaire answers.
type ContinueJobFound struct{ Answers JobFoundAnswers }

// ContinueJobFoundFeedback submits the job-found free-text step.
type ContinueJobFoundFeedback struct{ Text string }

// CompleteVisaStep answers the immigration-lawyer question and branches to a
// completion screen. Both visa entry steps share this rule.
type CompleteVisaStep struct {
	CompanyProvidingLawyer string // "Yes" or "No"
	VisaType               string
}

// SubmitSucceeded / SubmitFailed resolve an in-flight submission effect.
type SubmitSucceeded struct{}
type SubmitFailed struct{}

// Back re-enters the previous step without discarding answers, except for the
// reason step whose rollback is total.
type Back struct{}

func (VariantLoaded) isEvent()            {}
func (VariantLoadFailed) isEvent()        {}
func (AnswerJobQuestion) isEvent()        {}
func (AcceptOffer) isEvent()              {}
func (DeclineOffer) isEvent()             {}
func (TakeOffer) isEvent()                {}
func (ContinueFlow) isEvent()             {}
func (SetSurveyAnswer) isEvent()          {}
func (ContinueSurvey) isEvent()           {}
func (SelectReason) isEvent()             {}
func (SetMaxPrice) isEvent()              {}
func (SetReasonFeedback) isEvent()        {}
func (CompleteCancellation) isEvent()     {}
func (ContinueJobFound) isEvent()         {}
func (ContinueJobFoundFeedback) isEvent() {}
func (CompleteVisaStep) isEvent()         {}
func (SubmitSucceeded) isEvent()          {}
func (SubmitFailed) isEvent()             {}
func (Back) isEvent()                     {}

// SurveyQuestion identifies one of the three usage-survey selections.
type SurveyQuestion string

const (
	SurveyRolesApplied         SurveyQuestion = "rolesApplied"
	SurveyCompaniesEmailed     SurveyQuestion = "companiesEmailed"
	SurveyCompaniesInterviewed SurveyQuestion = "companiesInterviewed"
)
