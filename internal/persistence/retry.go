package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/cancelei-org/ca-small-claims-sub001/pkg/api"
)

// RetryingSubmissionStore decorates an api.SubmissionStore with a simple
// retry policy for transient storage failures. Domain errors (invalid
// actor, unknown form, submission not found) are never retried; they pass
// through unchanged so errors.Is checks in callers keep working.
//
// The engine itself stays retry-free; retries belong to the storage
// collaborator, which is exactly where this decorator sits.
type RetryingSubmissionStore struct {
	inner  api.SubmissionStore
	policy api.RetryPolicy
}

// Ensure RetryingSubmissionStore implements api.SubmissionStore.
var _ api.SubmissionStore = (*RetryingSubmissionStore)(nil)

// NewRetryingStore wraps inner with the given policy. A MaxAttempts below 1
// is treated as 1 (no retries).
func NewRetryingStore(inner api.SubmissionStore, policy api.RetryPolicy) *RetryingSubmissionStore {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}
	return &RetryingSubmissionStore{inner: inner, policy: policy}
}

func permanent(err error) bool {
	return errors.Is(err, api.ErrInvalidActor) ||
		errors.Is(err, api.ErrUnknownForm) ||
		errors.Is(err, api.ErrSubmissionNotFound)
}

func (r *RetryingSubmissionStore) do(ctx context.Context, op func() error) error {
	var err error
	for attempt := 1; ; attempt++ {
		err = op()
		if err == nil || permanent(err) || attempt >= r.policy.MaxAttempts {
			return err
		}
		if r.policy.Backoff > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(r.policy.Backoff):
			}
		} else if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

func (r *RetryingSubmissionStore) FindOrCreate(ctx context.Context, formID string, actor api.Actor, scope string) (*api.Submission, error) {
	var sub *api.Submission
	err := r.do(ctx, func() error {
		var opErr error
		sub, opErr = r.inner.FindOrCreate(ctx, formID, actor, scope)
		return opErr
	})
	return sub, err
}

func (r *RetryingSubmissionStore) Get(ctx context.Context, id string) (*api.Submission, error) {
	var sub *api.Submission
	err := r.do(ctx, func() error {
		var opErr error
		sub, opErr = r.inner.Get(ctx, id)
		return opErr
	})
	return sub, err
}

func (r *RetryingSubmissionStore) UpdateFields(ctx context.Context, id string, fields map[string]string) error {
	return r.do(ctx, func() error {
		return r.inner.UpdateFields(ctx, id, fields)
	})
}

func (r *RetryingSubmissionStore) MarkComplete(ctx context.Context, id string, complete bool) error {
	return r.do(ctx, func() error {
		return r.inner.MarkComplete(ctx, id, complete)
	})
}
