package workflow

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

// TaskQueue is the queue the validation worker polls.
const TaskQueue = "company-validation"

// RESCheckWorkflowName names the downstream registry-check workflow that is
// started fire-and-forget for accepted companies. It is owned and registered
// by the registry service, not by this worker.
const RESCheckWorkflowName = "RESRegistryCheck"

const (
	callTimeout     = 30 * time.Second
	retryInterval   = time.Second
	retryAttempts   = 3
	lookupHeartbeat = 60 * time.Second
	lookupTimeout   = 300 * time.Second
)

// fixedRetryPolicy is the uniform bounded retry applied to transient
// collaborator calls: three attempts spaced one second apart, no backoff
// growth. Steps that are not idempotent run with a single attempt instead.
func fixedRetryPolicy() *temporal.RetryPolicy {
	return &temporal.RetryPolicy{
		InitialInterval:    retryInterval,
		BackoffCoefficient: 1.0,
		MaximumAttempts:    retryAttempts,
	}
}

// withRetry configures ctx for a retried collaborator call.
func withRetry(ctx workflow.Context) workflow.Context {
	return workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: callTimeout,
		RetryPolicy:         fixedRetryPolicy(),
	})
}

// withSingleAttempt configures ctx for a call that must not be retried.
func withSingleAttempt(ctx workflow.Context) workflow.Context {
	return workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: callTimeout,
		RetryPolicy:         &temporal.RetryPolicy{MaximumAttempts: 1},
	})
}

// withLookupOptions configures ctx for the legal-entity lookup, which can
// poll the registry for minutes while the entity record is assembled. The
// activity heartbeats between polls so a stuck worker is detected early.
func withLookupOptions(ctx workflow.Context) workflow.Context {
	return workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: lookupTimeout,
		HeartbeatTimeout:    lookupHeartbeat,
		RetryPolicy:         fixedRetryPolicy(),
	})
}
