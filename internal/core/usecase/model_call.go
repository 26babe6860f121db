package usecase

import (
	"context"
	"time"

	"github.com/MagicMike0112/Project-Study-BSH/internal/core/domain"
	"github.com/MagicMike0112/Project-Study-BSH/internal/core/ports"
	"github.com/MagicMike0112/Project-Study-BSH/internal/core/recovery"
)

const (
	defaultModelTimeout  = 45 * time.Second
	defaultRepairTimeout = 20 * time.Second
	maxRepairInputRunes  = 8000
)

// generate calls the model under its own deadline. Anything but an input
// error is reported as ErrModelUnavailable.
func generate(ctx context.Context, model ports.GenerativeModel, timeout time.Duration, req domain.ModelRequest) (string, error) {
	if timeout <= 0 {
		timeout = defaultModelTimeout
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	out, err := model.Generate(callCtx, req)
	if err != nil {
		if domain.IsKind(err, domain.ErrModelUnavailable) || domain.IsKind(err, domain.ErrInvalidInput) {
			return "", err
		}
		return "", domain.WrapError(domain.ErrModelUnavailable, req.Operation, err)
	}
	return out, nil
}

func newRepairer(model ports.GenerativeModel, timeout time.Duration, operation string, observer ports.PipelineObserver) recovery.Repairer {
	if timeout <= 0 {
		timeout = defaultRepairTimeout
	}
	return func(ctx context.Context, text string, schema *recovery.Schema) (string, error) {
		observer.RepairCalled(operation)
		return generate(ctx, model, timeout, buildRepairRequest(operation, text, schema))
	}
}

type noopObserver struct{}

func (noopObserver) RecoveryFinished(string, string, bool) {}
func (noopObserver) RepairCalled(string) {}
func (noopObserver) ItemsEmitted(domain.EstimateSource, int) {}
func (noopObserver) ItemsDropped(string, int) {}
func (noopObserver) CacheLookup(string) {}
func (noopObserver) ExpiryEstimated(domain.EstimateSource) {}

func observerOrNoop(o ports.PipelineObserver) ports.PipelineObserver {
	if o == nil {
		return noopObserver{}
	}
	return o
}
