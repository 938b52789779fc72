// Package workflow contains the Temporal workflow that drives company
// validation during onboarding.
//
// The top-level CompanyValidation workflow runs two branches in parallel:
// one that resolves the company against the legal-entity registry and the
// institutional filter, and one that retrieves and evaluates the partner
// and attorney study. Each branch is modeled as an explicit state machine
// that advances one validation step at a time and resolves to a single
// terminal BranchResult. The orchestrator merges the two results into the
// final outcome, records it downstream, and fires the registry check for
// accepted companies.
//
// Workflow code here is deterministic. All I/O happens in activities that
// the branches invoke by registered name, which keeps every step mockable
// in the Temporal test environment.
package workflow
