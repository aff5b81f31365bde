package trading

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"cryptopilot/internal/errors"
	"cryptopilot/internal/models"
)

// MaxValidationAttempts is the hard ceiling on generate/validate passes in a
// single cycle. Exhausting it aborts the cycle.
const MaxValidationAttempts = 5

// Generator produces a recommendation set. A non-empty feedback string
// carries the reasons the previous set was rejected.
type Generator interface {
	Generate(ctx context.Context, feedback string) (map[string]models.Recommendation, error)
}

// ContextFn resolves the per-symbol validation context for a recommendation
// set. It is called fresh on every pass so prices and positions stay current.
type ContextFn func(recs map[string]models.Recommendation) map[string]SymbolContext

// LoopResult is the terminal outcome of the validation retry loop.
type LoopResult struct {
	Decision        models.ValidationDecision
	Recommendations map[string]models.Recommendation
	Attempts        []models.ValidationAttempt
	Warnings        []string
}

// ValidationLoop drives the generate → validate → rerun cycle until the
// validator accepts a set or the attempt ceiling aborts the cycle.
type ValidationLoop struct {
	generator Generator
	validator *Validator
	contexts  ContextFn
	log       zerolog.Logger
}

// NewValidationLoop creates a validation loop.
func NewValidationLoop(gen Generator, val *Validator, contexts ContextFn, log zerolog.Logger) *ValidationLoop {
	return &ValidationLoop{
		generator: gen,
		validator: val,
		contexts:  contexts,
		log:       log,
	}
}

// Run executes validation passes sequentially. Each pass appends exactly one
// attempt to the history. A rejected pass feeds its reason back into the next
// generation. After MaxValidationAttempts rejections the loop aborts and the
// pending recommendations are discarded.
func (l *ValidationLoop) Run(ctx context.Context) (LoopResult, error) {
	var result LoopResult
	feedback := ""

	for attempt := 1; attempt <= MaxValidationAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return result, errors.Wrap(err, "validation loop cancelled")
		}

		recs, err := l.generator.Generate(ctx, feedback)
		if err != nil {
			return result, errors.Wrap(err, "generating recommendations")
		}

		report := l.validator.Validate(recs, l.contexts(recs))

		if report.Decision == models.DecisionProceed {
			result.Attempts = append(result.Attempts, models.ValidationAttempt{
				Attempt:   attempt,
				Timestamp: time.Now(),
				Decision:  models.DecisionProceed,
				Reason:    report.Reason,
			})
			result.Decision = models.DecisionProceed
			result.Recommendations = recs
			result.Warnings = report.Warnings
			l.log.Info().
				Int("attempt", attempt).
				Int("warnings", len(report.Warnings)).
				Msg("Validation passed")
			return result, nil
		}

		decision := models.DecisionRerun
		if attempt == MaxValidationAttempts {
			decision = models.DecisionAbort
		}
		result.Attempts = append(result.Attempts, models.ValidationAttempt{
			Attempt:   attempt,
			Timestamp: time.Now(),
			Decision:  decision,
			Reason:    report.Reason,
		})

		l.log.Warn().
			Int("attempt", attempt).
			Str("decision", string(decision)).
			Str("reason", report.Reason).
			Msg("Validation rejected recommendations")

		feedback = report.Reason
	}

	// Pending recommendations are dropped; the cycle trades nothing.
	result.Decision = models.DecisionAbort
	result.Recommendations = nil
	l.log.Error().
		Int("attempts", MaxValidationAttempts).
		Msg("Validation attempts exhausted, aborting cycle")
	return result, nil
}
