package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"subscription-cancellation/internal/application"
	"subscription-cancellation/internal/domain/model"
	"subscription-cancellation/internal/wizard"
)

// Walks one full cancellation flow against a running API: fetches the
// variant, declines the offer when one is shown, fills the survey, picks a
// reason and submits the final outcome.
func main() {
	baseURL := flag.String("base-url", "http://localhost:8080", "cancellation API base URL")
	userID := flag.String("user", "", "user UUID (seed one with cmd/seed first)")
	accept := flag.Bool("accept", false, "accept the downsell offer instead of cancelling")
	flag.Parse()

	if *userID == "" {
		log.Fatalf("missing -user: pass a seeded user UUID")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	session := application.NewFlowSession(*baseURL, *userID, nil)

	// 1) Load the variant
	if err := session.Start(ctx); err != nil {
		log.Fatalf("start: %v", err)
	}
	fmt.Printf("variant: %s, step: %s\n", session.State().Variant, session.State().Step)

	// 2) No job found, so the flow heads toward the offer or the survey
	step(ctx, session, wizard.AnswerJobQuestion{FoundJob: false})

	// 3) Variant B sees the offer screen first
	if session.State().Step == wizard.StepDownsell {
		if *accept {
			step(ctx, session, wizard.AcceptOffer{})
			fmt.Printf("final step: %s\n", session.State().Step)
			return
		}
		step(ctx, session, wizard.DeclineOffer{})
	} else if session.State().Variant == model.VariantA && *accept {
		log.Fatalf("-accept needs variant B; user %s was assigned A", *userID)
	}

	// 4) Usage survey
	step(ctx, session, wizard.SetSurveyAnswer{Question: wizard.SurveyRolesApplied, Value: "1-5"})
	step(ctx, session, wizard.SetSurveyAnswer{Question: wizard.SurveyCompaniesEmailed, Value: "0"})
	step(ctx, session, wizard.SetSurveyAnswer{Question: wizard.SurveyCompaniesInterviewed, Value: "1-2"})
	step(ctx, session, wizard.ContinueSurvey{})

	// 5) Reason and final submission
	step(ctx, session, wizard.SelectReason{Reason: wizard.ReasonTooExpensive})
	step(ctx, session, wizard.SetMaxPrice{Value: "15"})
	step(ctx, session, wizard.CompleteCancellation{})

	fmt.Printf("final step: %s\n", session.State().Step)
}

func step(ctx context.Context, s *application.FlowSession, ev wizard.Event) {
	if err := s.Apply(ctx, ev); err != nil {
		log.Fatalf("%T at %q: %v", ev, s.State().Step, err)
	}
	fmt.Printf("  -> %s\n", s.State().Step)
}
