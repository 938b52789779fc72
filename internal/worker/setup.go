package worker

import (
	"os"
	"time"

	"github.com/onboarding-cl/company-validation/internal/domain"
	"github.com/onboarding-cl/company-validation/internal/ecommerce"
	"github.com/onboarding-cl/company-validation/internal/legalbot"
	"github.com/onboarding-cl/company-validation/internal/legalentity"
	"github.com/onboarding-cl/company-validation/internal/lifecycle"
	"github.com/onboarding-cl/company-validation/internal/notify"
	"github.com/onboarding-cl/company-validation/internal/storage"
	"github.com/onboarding-cl/company-validation/internal/workflow"
	pkgactivity "github.com/onboarding-cl/company-validation/pkg/activity"
	"github.com/onboarding-cl/company-validation/pkg/events"
)

// Config holds everything needed to build the worker components. Values come
// from the environment; see FromEnv for the variable names.
type Config struct {
	TemporalHostPort  string
	TemporalNamespace string

	ArtifactBaseURL string

	Ecommerce   ecommerce.Config
	Notify      notify.Config
	LegalEntity legalentity.Config
	LegalBot    legalbot.Config
}

// FromEnv builds a Config from the process environment, falling back to the
// per-client defaults for anything unset.
func FromEnv() Config {
	cfg := Config{
		TemporalHostPort:  envOr("TEMPORAL_HOST_PORT", "localhost:7233"),
		TemporalNamespace: envOr("TEMPORAL_NAMESPACE", "default"),
		ArtifactBaseURL:   envOr("ARTIFACT_BASE_URL", "https://onboarding-artifacts.local"),
		Ecommerce:         ecommerce.DefaultConfig(),
		Notify:            notify.DefaultConfig(),
		LegalEntity:       legalentity.DefaultConfig(),
		LegalBot:          legalbot.DefaultConfig(),
	}

	cfg.Ecommerce.Endpoint = os.Getenv("ECOMMERCE_ENDPOINT")
	cfg.Ecommerce.APIKey = os.Getenv("ECOMMERCE_API_KEY")
	cfg.Notify.Endpoint = os.Getenv("NOTIFY_ENDPOINT")
	cfg.LegalEntity.LookupEndpoint = os.Getenv("LEGAL_ENTITIES_ENDPOINT")
	cfg.LegalEntity.FilterEndpoint = os.Getenv("BCI_FILTER_ENDPOINT")
	cfg.LegalEntity.FilterAPIKey = os.Getenv("BCI_FILTER_API_KEY")
	cfg.LegalBot.RegistryEndpoint = os.Getenv("LEGALBOT_ENDPOINT")
	cfg.LegalBot.APIKey = os.Getenv("LEGALBOT_API_KEY")
	cfg.LegalBot.ServiceAPIKey = os.Getenv("LEGALBOT_SERVICE_API_KEY")
	cfg.LegalBot.ProcessorEndpoint = os.Getenv("LEGALBOT_PROCESSOR_ENDPOINT")
	cfg.LegalBot.DurationEndpoint = os.Getenv("DURATION_CHECK_ENDPOINT")

	if timeout := os.Getenv("COLLABORATOR_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil {
			cfg.Ecommerce.Timeout = d
			cfg.Notify.Timeout = d
			cfg.LegalEntity.Timeout = d
			cfg.LegalBot.Timeout = d
		}
	}

	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// NewComponents builds the production component set from cfg: HTTP-backed
// collaborator clients, the shared artifact store, and the workflow set
// evaluating the default rules.
func NewComponents(cfg Config, sink events.EventSink) Components {
	base := pkgactivity.NewBaseActivities(sink)
	store := storage.NewInMemoryArtifactStore(cfg.ArtifactBaseURL)

	entityClients := legalentity.NewHTTPClients(cfg.LegalEntity)
	botClients := legalbot.NewHTTPClients(cfg.LegalBot)

	return Components{
		Workflows:   workflow.NewWorkflows(domain.DefaultRules()),
		Lifecycle:   lifecycle.NewActivities(base, sink),
		Ecommerce:   ecommerce.NewActivities(base, ecommerce.NewHTTPClient(cfg.Ecommerce)),
		Notify:      notify.NewActivities(base, notify.NewHTTPClient(cfg.Notify)),
		LegalEntity: legalentity.NewActivities(base, entityClients, entityClients, store),
		LegalBot:    legalbot.NewActivities(base, botClients, botClients, botClients, store),
	}
}
