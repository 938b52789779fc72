package workflow

import (
	"go.temporal.io/sdk/workflow"

	"github.com/onboarding-cl/company-validation/internal/domain"
)

// recoveryFn produces the terminal branch result after a call's retries are
// exhausted. Recovery procedures record a status and notify before deciding
// the terminal, so they take the workflow context.
type recoveryFn func(workflow.Context) domain.BranchResult

// callActivity is the uniform call wrapper both branches use: it executes
// the named activity under the given options, decodes the result into out,
// and on final failure runs the recovery continuation and returns its
// terminal. A nil return means the call succeeded and the branch advances.
func callActivity(
	ctx workflow.Context,
	opts func(workflow.Context) workflow.Context,
	name string,
	in, out any,
	recovery recoveryFn,
) *domain.BranchResult {
	if err := workflow.ExecuteActivity(opts(ctx), name, in).Get(ctx, out); err != nil {
		res := recovery(ctx)
		return &res
	}
	return nil
}
