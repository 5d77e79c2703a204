package gpt

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrOrganizerNotFound = errors.New("organizer not found")
	ErrQuotaExhausted    = errors.New("gpt quota exhausted")
)

// UpstreamError marks a failure of the external generation call so the
// handler can tell it apart from quota failures.
type UpstreamError struct {
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("description generation failed: %v", e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// QuotaStore is the durable per-organizer remaining-uses counter.
// DecrementQuota must be a single atomic compare-and-decrement with a
// quota >= 1 guard, reporting the new value when it applied.
type QuotaStore interface {
	GetQuota(ctx context.Context, userID string) (int, error)
	DecrementQuota(ctx context.Context, userID string) (quota int, ok bool, err error)
}

// Generator produces text from a prompt; the quota service treats it
// as an opaque metered capability.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type QuotaService struct {
	Quota QuotaStore
	Gen   Generator
}

// GenerateDescription gates one generation behind the organizer's
// quota. The quota is decremented only after the upstream call
// succeeds, so upstream failures never burn quota. Two concurrent
// calls racing on the last unit both reach the guard, but only the
// winner's decrement applies; the loser reports exhaustion.
func (svc *QuotaService) GenerateDescription(ctx context.Context, userID, text string) (description string, quota int, err error) {
	current, err := svc.Quota.GetQuota(ctx, userID)
	if err != nil {
		return "", 0, err
	}
	if current <= 0 {
		return "", 0, ErrQuotaExhausted
	}

	description, err = svc.Gen.Generate(ctx, text)
	if err != nil {
		return "", 0, &UpstreamError{Err: err}
	}

	quota, ok, err := svc.Quota.DecrementQuota(ctx, userID)
	if err != nil {
		return "", 0, err
	}
	if !ok {
		return "", 0, ErrQuotaExhausted
	}
	return description, quota, nil
}
