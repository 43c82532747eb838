package correction

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ekaya-inc/joinplanner/pkg/apperrors"
	"github.com/ekaya-inc/joinplanner/pkg/llm"
	"github.com/ekaya-inc/joinplanner/pkg/logging"
	"github.com/ekaya-inc/joinplanner/pkg/models"
	"github.com/ekaya-inc/joinplanner/pkg/sql"
)

// FailureEscalationTimeout is the failure reason recorded when the reasoner
// did not answer within the caller-supplied timeout. Timed-out escalations
// are never retried automatically.
const FailureEscalationTimeout = "EscalationTimeout"

// Options bound the pipeline's behavior.
type Options struct {
	// MaxAttempts is the correction budget per originating query. Attempts
	// beyond it terminate in failure without touching the fixers.
	MaxAttempts int
	// EscalationTimeout applies to reasoner calls when the caller's context
	// carries no deadline of its own.
	EscalationTimeout time.Duration
}

// DefaultOptions returns the default bounds: 3 attempts per query, 30s
// escalation timeout.
func DefaultOptions() Options {
	return Options{
		MaxAttempts:       3,
		EscalationTimeout: 30 * time.Second,
	}
}

// Pipeline drives one correction attempt through its states:
// Received -> Normalized -> {DeterministicFixApplied | EscalationRequested}
// -> {Succeeded | Failed}.
type Pipeline struct {
	fixers   map[models.ErrorType]Fixer
	reasoner llm.Reasoner
	metrics  *Metrics
	opts     Options
	logger   *zap.Logger

	// attempt counts per originating query, process lifetime
	attempts sync.Map // string -> *atomic.Int64
}

// NewPipeline creates a correction pipeline. The metrics handle is shared,
// process-wide state owned by the caller.
func NewPipeline(reasoner llm.Reasoner, metrics *Metrics, opts Options, logger *zap.Logger) *Pipeline {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultOptions().MaxAttempts
	}
	return &Pipeline{
		fixers:   defaultFixers(),
		reasoner: reasoner,
		metrics:  metrics,
		opts:     opts,
		logger:   logger.Named("correction"),
	}
}

// Correct attempts to repair a query that failed with the given raw error.
// On success the outcome carries the corrected query; on failure it carries
// the reason and the chain of fixer types attempted, and the returned error
// wraps apperrors.ErrCorrectionFailed.
func (p *Pipeline) Correct(ctx context.Context, query, rawError string) (*models.CorrectionOutcome, error) {
	attemptID := uuid.New()
	outcome := &models.CorrectionOutcome{AttemptID: attemptID}

	p.metrics.recordAttempt()

	normalized := sql.ValidateAndNormalize(query)
	if normalized.Error != nil {
		return p.fail(outcome, fmt.Sprintf("query not correctable: %v", normalized.Error))
	}
	query = normalized.NormalizedSQL

	// Enforce the per-query attempt budget before doing any work.
	count := p.bumpAttempts(query)
	if count > int64(p.opts.MaxAttempts) {
		p.logger.Warn("Correction budget exhausted",
			zap.String("attempt_id", attemptID.String()),
			zap.Int64("attempts", count),
			zap.Int("budget", p.opts.MaxAttempts))
		return p.fail(outcome, fmt.Sprintf("attempt budget of %d exhausted", p.opts.MaxAttempts))
	}

	normErr := Normalize(rawError)
	p.logger.Debug("Error normalized",
		zap.String("attempt_id", attemptID.String()),
		zap.String("error_type", normErr.Type.String()),
		zap.String("query", logging.SanitizeQuery(query)),
		zap.String("raw_error", logging.SanitizeRawError(logging.TruncateString(rawError, 200))))

	if fixer, ok := p.fixers[normErr.Type]; ok {
		outcome.AttemptedFixers = append(outcome.AttemptedFixers, normErr.Type.String())
		if fixed, ok := fixer.Fix(query, normErr); ok {
			p.metrics.recordDeterministic()
			outcome.Succeeded = true
			outcome.Method = models.MethodDeterministic
			outcome.Query = fixed
			p.logger.Info("Deterministic fix applied",
				zap.String("attempt_id", attemptID.String()),
				zap.String("error_type", normErr.Type.String()))
			return outcome, nil
		}
	}

	return p.escalate(ctx, outcome, query, normErr)
}

// escalate hands the query to the external reasoner and screens its answer.
func (p *Pipeline) escalate(ctx context.Context, outcome *models.CorrectionOutcome, query string, normErr models.NormalizedError) (*models.CorrectionOutcome, error) {
	outcome.AttemptedFixers = append(outcome.AttemptedFixers, "escalation")

	if _, hasDeadline := ctx.Deadline(); !hasDeadline && p.opts.EscalationTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.opts.EscalationTimeout)
		defer cancel()
	}

	replacement, err := p.reasoner.AttemptFix(ctx, query, normErr)
	if err != nil {
		reason := fmt.Sprintf("escalation failed: %v", err)
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			reason = FailureEscalationTimeout
		case errors.Is(err, apperrors.ErrUnfixable):
			reason = fmt.Sprintf("reasoner cannot fix %s error", normErr.Type)
		}
		return p.fail(outcome, reason)
	}

	screened, err := sql.ScreenReplacement(replacement)
	if err != nil {
		return p.fail(outcome, err.Error())
	}

	p.metrics.recordEscalated()
	outcome.Succeeded = true
	outcome.Method = models.MethodEscalated
	outcome.Query = screened
	p.logger.Info("Escalated fix accepted",
		zap.String("attempt_id", outcome.AttemptID.String()),
		zap.String("error_type", normErr.Type.String()))
	return outcome, nil
}

// fail finalizes a failed attempt: counts it, logs the attempted fixer
// chain, and wraps the terminal error.
func (p *Pipeline) fail(outcome *models.CorrectionOutcome, reason string) (*models.CorrectionOutcome, error) {
	p.metrics.recordFailure()
	outcome.Succeeded = false
	outcome.FailureReason = reason
	p.logger.Warn("Correction failed",
		zap.String("attempt_id", outcome.AttemptID.String()),
		zap.String("reason", reason),
		zap.String("attempted_fixers", strings.Join(outcome.AttemptedFixers, ",")))
	return outcome, fmt.Errorf("%w: %s", apperrors.ErrCorrectionFailed, reason)
}

// bumpAttempts increments and returns the attempt count for the query.
func (p *Pipeline) bumpAttempts(query string) int64 {
	v, _ := p.attempts.LoadOrStore(query, new(atomic.Int64))
	return v.(*atomic.Int64).Add(1)
}
