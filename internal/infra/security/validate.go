package security

import (
	"fmt"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"subscription-cancellation/internal/domain"
)

// SubmitPayload is the body of a cancellation submission. AcceptedDownsell is
// a pointer so an absent field fails validation instead of defaulting to
// false. Reason is only required when the downsell was declined.
type SubmitPayload struct {
	UserID           string `json:"userId" validate:"required,uuid_rfc4122"`
	SubscriptionID   string `json:"subscriptionId" validate:"required,uuid_rfc4122"`
	Variant          string `json:"downsellVariant" validate:"required,oneof=A B"`
	Reason           string `json:"reason"`
	AcceptedDownsell *bool  `json:"acceptedDownsell" validate:"required"`
}

const (
	minReasonLen = 3
	maxReasonLen = 500
)

// Validator checks submission payloads structurally and semantically.
type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	return &Validator{validate: validator.New()}
}

// ValidateSubmit runs the struct tags and then the reason-length rule over
// the sanitized text, so padding a short reason with markup cannot pass.
// An accepted downsell carries no reason; the rule only applies to declines.
func (v *Validator) ValidateSubmit(p *SubmitPayload) error {
	if err := v.validate.Struct(p); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidArgument, firstValidationError(err))
	}
	if p.AcceptedDownsell != nil && *p.AcceptedDownsell {
		return nil
	}
	cleaned := SanitizeInput(p.Reason)
	if n := utf8.RuneCountInString(cleaned); n < minReasonLen || n > maxReasonLen {
		return fmt.Errorf("%w: reason must be between %d and %d characters",
			domain.ErrInvalidArgument, minReasonLen, maxReasonLen)
	}
	return nil
}

// IsValidUUID reports whether s is an RFC 4122 UUID.
func (v *Validator) IsValidUUID(s string) bool {
	return v.validate.Var(s, "uuid_rfc4122") == nil
}

func firstValidationError(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return err.Error()
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("missing field %s", fe.Field())
	case "uuid_rfc4122":
		return fmt.Sprintf("field %s is not a valid UUID", fe.Field())
	case "oneof":
		return fmt.Sprintf("field %s must be one of: %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("field %s failed %s", fe.Field(), fe.Tag())
	}
}
