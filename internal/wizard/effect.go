package wizard

// EffectKind enumerates the network actions a transition can request. A
// transition returns at most one effect; the driver resolves it with a
// follow-up event.
type EffectKind int

const (
	// EffectFetchVariant asks the driver to load the user's experiment bucket
	// and CSRF token from the variant endpoint.
	EffectFetchVariant EffectKind = iota + 1

	// EffectSubmit asks the driver to post the final cancellation payload.
	EffectSubmit
)

type Effect struct {
	Kind       EffectKind
	Submission *Submission
}

// Submission is the final outcome payload an EffectSubmit carries. The driver
// adds the user, subscription and variant identifiers it already holds.
type Submission struct {
	AcceptedDownsell bool
	Reason           string
}
