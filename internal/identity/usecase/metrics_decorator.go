package usecase

import (
	"context"
	"errors"
	"time"

	identityDomain "github.com/allisson/idgate/internal/identity/domain"
	"github.com/allisson/idgate/internal/metrics"
)

// loginUseCaseWithMetrics decorates LoginUseCase with metrics instrumentation.
type loginUseCaseWithMetrics struct {
	next    LoginUseCase
	metrics metrics.BusinessMetrics
}

// NewLoginUseCaseWithMetrics wraps a LoginUseCase with metrics recording.
func NewLoginUseCaseWithMetrics(useCase LoginUseCase, m metrics.BusinessMetrics) LoginUseCase {
	return &loginUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// Login records metrics for login operations, distinguishing blocked
// attempts from plain failures.
func (l *loginUseCaseWithMetrics) Login(
	ctx context.Context,
	input *identityDomain.LoginInput,
) (*identityDomain.LoginOutput, error) {
	start := time.Now()
	output, err := l.next.Login(ctx, input)

	status := "success"
	switch {
	case errors.Is(err, identityDomain.ErrAccountBlocked):
		status = "blocked"
	case err != nil:
		status = "error"
	}

	l.metrics.RecordOperation(ctx, "identity", "login", status)
	l.metrics.RecordDuration(ctx, "identity", "login", time.Since(start), status)

	return output, err
}
