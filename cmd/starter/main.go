// Command starter launches a company-validation run, mainly for local
// development against a running worker.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/google/uuid"
	sdkclient "go.temporal.io/sdk/client"

	"github.com/onboarding-cl/company-validation/internal/domain"
	"github.com/onboarding-cl/company-validation/internal/worker"
	"github.com/onboarding-cl/company-validation/internal/workflow"
)

func main() {
	var (
		rut       = flag.String("rut", "", "company RUT, e.g. 76543210-5")
		processID = flag.String("process-id", uuid.NewString(), "validation process id")
		customer  = flag.String("customer", "dev-customer", "customer code")
		product   = flag.String("product", "cuenta-pyme", "product under application")
		clientID  = flag.String("client-id", "starter-cli", "requesting client id")
		cookie    = flag.String("cookie", "", "session cookie for status updates")
		csrf      = flag.String("csrftoken", "", "csrf token for status updates")
		wait      = flag.Bool("wait", true, "wait for the terminal outcome")
	)
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	req := domain.ValidationRequest{
		ProcessID:    *processID,
		Rut:          *rut,
		CustomerCode: *customer,
		Product:      *product,
		ClientID:     *clientID,
		AuthCookie:   *cookie,
		CSRFToken:    *csrf,
	}
	if err := req.Validate(); err != nil {
		logger.Error("invalid request", "error", err)
		os.Exit(2)
	}

	cfg := worker.FromEnv()
	c, err := sdkclient.Dial(sdkclient.Options{
		HostPort:  cfg.TemporalHostPort,
		Namespace: cfg.TemporalNamespace,
	})
	if err != nil {
		logger.Error("temporal dial failed", "error", err)
		os.Exit(1)
	}
	defer c.Close()

	ctx := context.Background()
	run, err := c.ExecuteWorkflow(ctx, sdkclient.StartWorkflowOptions{
		ID:        "company-validation-" + req.ProcessID,
		TaskQueue: workflow.TaskQueue,
	}, workflow.WorkflowCompanyValidation, req)
	if err != nil {
		logger.Error("start failed", "error", err)
		os.Exit(1)
	}

	logger.Info("validation started",
		"workflow_id", run.GetID(), "run_id", run.GetRunID(), "rut", req.Rut)

	if !*wait {
		return
	}

	var outcome domain.Outcome
	if err := run.Get(ctx, &outcome); err != nil {
		logger.Error("validation failed", "error", err)
		os.Exit(1)
	}
	logger.Info("validation finished",
		"status", outcome.Status,
		"res_check_started", outcome.RESCheckStarted)
}
