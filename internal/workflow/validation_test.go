package workflow

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/testsuite"
	"go.temporal.io/sdk/workflow"

	"github.com/onboarding-cl/company-validation/internal/domain"
	"github.com/onboarding-cl/company-validation/internal/ecommerce"
	"github.com/onboarding-cl/company-validation/internal/legalbot"
	"github.com/onboarding-cl/company-validation/internal/legalentity"
	"github.com/onboarding-cl/company-validation/internal/lifecycle"
	"github.com/onboarding-cl/company-validation/internal/notify"
	"github.com/onboarding-cl/company-validation/internal/storage"
	pkgactivity "github.com/onboarding-cl/company-validation/pkg/activity"
	"github.com/onboarding-cl/company-validation/pkg/events"
)

func boolPtr(b bool) *bool    { return &b }
func intPtr(n int) *int       { return &n }
func strPtr(s string) *string { return &s }

func testRequest() domain.ValidationRequest {
	return domain.ValidationRequest{
		ProcessID:    "0f2a7e4e-0f0b-4a9e-bb1a-3a4f0e8d9c21",
		Rut:          "76543210-5",
		CustomerCode: "C-1001",
		Product:      "cuenta-pyme",
		ClientID:     "onboarding-web",
		AuthCookie:   "session=abc",
		CSRFToken:    "tok-1",
	}
}

// completedLookup is a registry record that passes every legal-entity gate.
func completedLookup() *domain.LegalEntityLookup {
	return &domain.LegalEntityLookup{
		Codigo: 0,
		Estado: domain.LookupStateCompleted,
		EntidadLegal: &domain.LegalEntity{
			Rut:         "76543210-5",
			RazonSocial: "Comercial Andina SpA",
			DatosBase: domain.BaseData{
				FchInicioActividades: strPtr("2019-04-01"),
				ActEconomicas:        []domain.EconomicActivity{{Codigo: 471100}},
			},
			DatosAdicionales: &domain.AdditionalData{
				SubTipoContribuyente: "SOCIEDAD POR ACCIONES",
			},
		},
	}
}

// downloadedReference is a registry answer carrying a study payload.
func downloadedReference() *domain.StudyReference {
	return &domain.StudyReference{
		Codigo:     0,
		Mensaje:    domain.StudyMsgDownloaded,
		EnlaceJson: strPtr("https://legalbot.example/studies/abc123.json"),
	}
}

// approvedStudy passes every ownership gate.
func approvedStudy() *domain.Study {
	return &domain.Study{
		ID:            "study-abc123",
		Rut:           "76543210-5",
		CompanyKind:   3,
		IsApproved:    boolPtr(true),
		IsPreApproved: true,
		Associates: []domain.Associate{
			{Rut: "12345678-9"},
			{Rut: "23456789-0"},
		},
	}
}

type fakeStatusClient struct {
	mu         sync.Mutex
	updates    []ecommerce.StatusData
	failAll    bool
	failStatus domain.Status
}

func (f *fakeStatusClient) Update(_ context.Context, _ domain.ValidationRequest, data ecommerce.StatusData) (*ecommerce.UpdateResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll || (f.failStatus != "" && data.Status == f.failStatus) {
		return nil, errors.New("ecommerce unavailable")
	}
	f.updates = append(f.updates, data)
	return &ecommerce.UpdateResult{StatusCode: 200}, nil
}

func (f *fakeStatusClient) recorded() []domain.Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	var statuses []domain.Status
	for _, u := range f.updates {
		if u.Status != "" {
			statuses = append(statuses, u.Status)
		}
	}
	return statuses
}

func (f *fakeStatusClient) partnersData() *ecommerce.PartnersData {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.updates) - 1; i >= 0; i-- {
		if f.updates[i].PartnersAndAttorneys != nil {
			return f.updates[i].PartnersAndAttorneys
		}
	}
	return nil
}

type fakeNotifier struct {
	mu       sync.Mutex
	statuses []domain.Status
	err      error
}

func (f *fakeNotifier) Notify(_ context.Context, _ domain.ValidationRequest, status domain.Status, _ json.RawMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.statuses = append(f.statuses, status)
	return nil
}

func (f *fakeNotifier) notified() []domain.Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Status(nil), f.statuses...)
}

type fakeLookupClient struct {
	lookup *domain.LegalEntityLookup
	err    error
}

func (f *fakeLookupClient) Lookup(context.Context, string) (*domain.LegalEntityLookup, error) {
	return f.lookup, f.err
}

type fakeFilterClient struct {
	calls  atomic.Int32
	result *domain.RegulatorFilterResult
	err    error
}

func (f *fakeFilterClient) Validate(context.Context, string, string) (*domain.RegulatorFilterResult, error) {
	f.calls.Add(1)
	return f.result, f.err
}

type fakeRegistryClient struct {
	calls     atomic.Int32
	failFirst int32
	ref       *domain.StudyReference
	err       error
}

func (f *fakeRegistryClient) GetStudy(context.Context, string) (*domain.StudyReference, error) {
	n := f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	if n <= f.failFirst {
		return nil, errors.New("transient registry error")
	}
	return f.ref, nil
}

type fakeProcessor struct {
	study *domain.Study
	err   error
}

func (f *fakeProcessor) Process(context.Context, domain.StudyReference) (*domain.Study, error) {
	return f.study, f.err
}

type fakeDurationChecker struct {
	valid bool
	err   error
}

func (f *fakeDurationChecker) CheckDuration(context.Context, string) (bool, error) {
	return f.valid, f.err
}

// fixture wires the workflow and real activities over in-memory fakes,
// preloaded with a request that passes every gate. Tests override one fake
// at a time to drive each terminal.
type fixture struct {
	env *testsuite.TestWorkflowEnvironment

	status    *fakeStatusClient
	notifier  *fakeNotifier
	lookup    *fakeLookupClient
	filter    *fakeFilterClient
	registry  *fakeRegistryClient
	processor *fakeProcessor
	duration  *fakeDurationChecker
	store     *storage.InMemoryArtifactStore

	resRuns atomic.Int32
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	suite := &testsuite.WorkflowTestSuite{}
	f := &fixture{
		env:       suite.NewTestWorkflowEnvironment(),
		status:    &fakeStatusClient{},
		notifier:  &fakeNotifier{},
		lookup:    &fakeLookupClient{lookup: completedLookup()},
		filter:    &fakeFilterClient{result: &domain.RegulatorFilterResult{Data: &domain.FilterVerdict{Valido: true}}},
		registry:  &fakeRegistryClient{ref: downloadedReference()},
		processor: &fakeProcessor{study: approvedStudy()},
		duration:  &fakeDurationChecker{valid: true},
		store:     storage.NewInMemoryArtifactStore("https://artifacts.example"),
	}

	base := pkgactivity.NewBaseActivities(events.NewNoOpEventSink())
	wfs := NewWorkflows(domain.DefaultRules())

	f.env.RegisterWorkflowWithOptions(wfs.CompanyValidation,
		workflow.RegisterOptions{Name: WorkflowCompanyValidation})
	f.env.RegisterWorkflowWithOptions(func(ctx workflow.Context, in RESCheckInput) error {
		f.resRuns.Add(1)
		return nil
	}, workflow.RegisterOptions{Name: RESCheckWorkflowName})

	lifecycleActs := lifecycle.NewActivities(base, events.NewNoOpEventSink())
	f.env.RegisterActivityWithOptions(lifecycleActs.EmitStarted,
		activity.RegisterOptions{Name: lifecycle.ActivityEmitStarted})
	f.env.RegisterActivityWithOptions(lifecycleActs.EmitFinished,
		activity.RegisterOptions{Name: lifecycle.ActivityEmitFinished})

	ecommerceActs := ecommerce.NewActivities(base, f.status)
	f.env.RegisterActivityWithOptions(ecommerceActs.UpdateStatus,
		activity.RegisterOptions{Name: ecommerce.ActivityUpdateStatus})

	notifyActs := notify.NewActivities(base, f.notifier)
	f.env.RegisterActivityWithOptions(notifyActs.Notify,
		activity.RegisterOptions{Name: notify.ActivityNotify})

	entityActs := legalentity.NewActivities(base, f.lookup, f.filter, f.store)
	f.env.RegisterActivityWithOptions(entityActs.Lookup,
		activity.RegisterOptions{Name: legalentity.ActivityLookup})
	f.env.RegisterActivityWithOptions(entityActs.PersistEntity,
		activity.RegisterOptions{Name: legalentity.ActivityPersistEntity})
	f.env.RegisterActivityWithOptions(entityActs.ValidateWithFilter,
		activity.RegisterOptions{Name: legalentity.ActivityValidateWithFilter})
	f.env.RegisterActivityWithOptions(entityActs.PersistFilterResult,
		activity.RegisterOptions{Name: legalentity.ActivityPersistFilterResult})

	botActs := legalbot.NewActivities(base, f.registry, f.processor, f.duration, f.store)
	f.env.RegisterActivityWithOptions(botActs.FetchStudy,
		activity.RegisterOptions{Name: legalbot.ActivityFetchStudy})
	f.env.RegisterActivityWithOptions(botActs.ProcessStudy,
		activity.RegisterOptions{Name: legalbot.ActivityProcessStudy})
	f.env.RegisterActivityWithOptions(botActs.CheckDuration,
		activity.RegisterOptions{Name: legalbot.ActivityCheckDuration})
	f.env.RegisterActivityWithOptions(botActs.PersistRawStudy,
		activity.RegisterOptions{Name: legalbot.ActivityPersistRawStudy})
	f.env.RegisterActivityWithOptions(botActs.PersistStudy,
		activity.RegisterOptions{Name: legalbot.ActivityPersistStudy})

	return f
}

// run executes the workflow to completion and decodes the outcome.
func (f *fixture) run(t *testing.T, req domain.ValidationRequest) *domain.Outcome {
	t.Helper()
	f.env.ExecuteWorkflow(WorkflowCompanyValidation, req)
	require.True(t, f.env.IsWorkflowCompleted())
	require.NoError(t, f.env.GetWorkflowError())

	var outcome domain.Outcome
	require.NoError(t, f.env.GetWorkflowResult(&outcome))
	return &outcome
}

func TestCompanyValidationAccepted(t *testing.T) {
	f := newFixture(t)
	outcome := f.run(t, testRequest())

	assert.Equal(t, domain.StatusEmpresaValida, outcome.Status)
	assert.True(t, outcome.LegalBot.OK())
	assert.True(t, outcome.LegalEntity.OK())
	assert.True(t, outcome.RESCheckStarted)
	assert.Equal(t, int32(1), f.resRuns.Load(), "registry check should run once")

	// Entity, filter result, raw study, and processed study artifacts.
	assert.Equal(t, 4, f.store.Len())

	statuses := f.status.recorded()
	assert.Equal(t, domain.StatusPrecalificacion, statuses[0])
	assert.Contains(t, f.notifier.notified(), domain.StatusApoderadosYSociosRecuperados)
	assert.Contains(t, f.notifier.notified(), domain.StatusEmpresaValida)

	partners := f.status.partnersData()
	require.NotNil(t, partners)
	assert.Len(t, partners.Partners, 2)
	assert.Equal(t, "study-abc123", partners.StudyID)
	require.NotNil(t, partners.Dispatch)
	assert.False(t, *partners.Dispatch)
}

func TestCompanyValidationBlockedActivity(t *testing.T) {
	f := newFixture(t)
	f.lookup.lookup.EntidadLegal.DatosBase.ActEconomicas = []domain.EconomicActivity{
		{Codigo: 471100},
		{Codigo: 842300},
	}

	outcome := f.run(t, testRequest())

	assert.Equal(t, domain.StatusRechazadaActividadesNoPermitidas, outcome.Status)
	assert.Equal(t, domain.BranchRejected, outcome.LegalEntity.Code)
	assert.True(t, outcome.LegalBot.OK(), "ownership branch is independent")
	assert.False(t, outcome.RESCheckStarted)
	assert.Zero(t, f.resRuns.Load())
	assert.Contains(t, f.status.recorded(), domain.StatusRechazadaActividadesNoPermitidas)
	assert.Contains(t, f.notifier.notified(), domain.StatusRechazadaActividadesNoPermitidas)
	assert.NotContains(t, f.notifier.notified(), domain.StatusEmpresaValida)
}

func TestCompanyValidationCompanyKindRejected(t *testing.T) {
	f := newFixture(t)
	f.processor.study.CompanyKind = 4

	outcome := f.run(t, testRequest())

	assert.Equal(t, domain.StatusRechazadaTipoSociedad, outcome.Status)
	assert.Equal(t, domain.BranchRejected, outcome.LegalBot.Code)
	assert.True(t, outcome.LegalEntity.OK())
}

func TestCompanyValidationPymePartner(t *testing.T) {
	// The same partner set in either order produces the same terminal.
	orders := [][]domain.Associate{
		{{Rut: "12345678-9"}, {Rut: "60000000-0"}},
		{{Rut: "60000000-0"}, {Rut: "12345678-9"}},
	}
	for _, associates := range orders {
		f := newFixture(t)
		f.processor.study.Associates = associates

		outcome := f.run(t, testRequest())

		assert.Equal(t, domain.StatusRechazadaSocioPyme, outcome.Status)
		partners := f.status.partnersData()
		require.NotNil(t, partners)
		require.Len(t, partners.Partners, 1)
		assert.Equal(t, "60000000-0", partners.Partners[0].Rut)
	}
}

func TestCompanyValidationPymeUnparseableRut(t *testing.T) {
	f := newFixture(t)
	f.processor.study.Associates = []domain.Associate{{Rut: "sin-digito"}}

	outcome := f.run(t, testRequest())
	assert.Equal(t, domain.StatusRechazadaSocioPyme, outcome.Status)
}

func TestCompanyValidationAssociateCount(t *testing.T) {
	f := newFixture(t)
	f.processor.study.CompanyKind = 2
	f.processor.study.Associates = []domain.Associate{
		{Rut: "12345678-9"},
		{Rut: "23456789-0"},
	}

	outcome := f.run(t, testRequest())
	assert.Equal(t, domain.StatusRechazadaCantidadSocios, outcome.Status)
}

func TestCompanyValidationDefinedDuration(t *testing.T) {
	t.Run("expired duration rejects", func(t *testing.T) {
		f := newFixture(t)
		f.processor.study.DurationType = intPtr(domain.DurationTypeDefined)
		f.processor.study.DurationEndDate = "2023-01-31"
		f.duration.valid = false

		outcome := f.run(t, testRequest())
		assert.Equal(t, domain.StatusRechazadaDuracionDefinida, outcome.Status)
	})

	t.Run("valid duration continues", func(t *testing.T) {
		f := newFixture(t)
		f.processor.study.DurationType = intPtr(domain.DurationTypeDefined)
		f.processor.study.DurationEndDate = "2030-01-31"
		f.duration.valid = true

		outcome := f.run(t, testRequest())
		assert.Equal(t, domain.StatusEmpresaValida, outcome.Status)
	})
}

func TestCompanyValidationDispatchShortcut(t *testing.T) {
	f := newFixture(t)
	// Undetermined approval dispatches partner data directly; the kind,
	// Pyme, and count gates would all fail if evaluated.
	f.processor.study.IsApproved = nil
	f.processor.study.IsPreApproved = false
	f.processor.study.CompanyKind = 9
	f.processor.study.Associates = []domain.Associate{{Rut: "60000000-0"}}

	outcome := f.run(t, testRequest())

	assert.Equal(t, domain.StatusEmpresaValida, outcome.Status)
	partners := f.status.partnersData()
	require.NotNil(t, partners)
	require.NotNil(t, partners.Dispatch)
	assert.True(t, *partners.Dispatch)
}

func TestCompanyValidationApprovalRejected(t *testing.T) {
	f := newFixture(t)
	f.processor.study.IsApproved = boolPtr(false)

	outcome := f.run(t, testRequest())
	assert.Equal(t, domain.StatusRechazadaDeterminandoApoderados, outcome.Status)
}

func TestCompanyValidationNotInRES(t *testing.T) {
	f := newFixture(t)
	f.registry.ref = &domain.StudyReference{
		Codigo:  0,
		Mensaje: domain.StudyMsgNotSameDayCompany,
	}

	outcome := f.run(t, testRequest())

	assert.Equal(t, domain.StatusEmpresaValida, outcome.Status)
	assert.True(t, outcome.LegalBot.NotInRES)
	assert.False(t, outcome.RESCheckStarted, "registry check is suppressed")
	assert.Zero(t, f.resRuns.Load())

	partners := f.status.partnersData()
	require.NotNil(t, partners)
	require.NotNil(t, partners.RegistroRES)
	assert.False(t, *partners.RegistroRES)
}

func TestCompanyValidationEntityNotFound(t *testing.T) {
	f := newFixture(t)
	f.lookup.lookup = &domain.LegalEntityLookup{Codigo: 2, Estado: "NoEncontrado"}

	outcome := f.run(t, testRequest())
	assert.Equal(t, domain.StatusRechazadaEntidadNoEncontrada, outcome.Status)
}

func TestCompanyValidationEntityStillFetching(t *testing.T) {
	f := newFixture(t)
	f.lookup.lookup = &domain.LegalEntityLookup{Codigo: 0, Estado: domain.LookupStateFetching}

	outcome := f.run(t, testRequest())
	assert.Equal(t, domain.StatusErrorInterno, outcome.Status)
	assert.Equal(t, domain.BranchSystemError, outcome.LegalEntity.Code)
}

func TestCompanyValidationNoActivityStart(t *testing.T) {
	f := newFixture(t)
	f.lookup.lookup.EntidadLegal.DatosBase.FchInicioActividades = nil

	outcome := f.run(t, testRequest())
	assert.Equal(t, domain.StatusRechazadaNoInicioActividades, outcome.Status)
}

func TestCompanyValidationTerminatedActivities(t *testing.T) {
	f := newFixture(t)
	f.lookup.lookup.EntidadLegal.DatosAdicionales.FchTerminoGiro = strPtr("2024-06-30")

	outcome := f.run(t, testRequest())
	assert.Equal(t, domain.StatusRechazadaTerminoActividades, outcome.Status)
}

func TestCompanyValidationDisallowedSubtype(t *testing.T) {
	f := newFixture(t)
	f.lookup.lookup.EntidadLegal.DatosAdicionales.SubTipoContribuyente = "SOCIEDAD ANONIMA ABIERTA"

	outcome := f.run(t, testRequest())
	assert.Equal(t, domain.StatusRechazadaTipoSociedad, outcome.Status)
}

func TestCompanyValidationFilterVerdictFalse(t *testing.T) {
	f := newFixture(t)
	f.filter.result = &domain.RegulatorFilterResult{Data: &domain.FilterVerdict{Valido: false}}

	outcome := f.run(t, testRequest())
	assert.Equal(t, domain.StatusRechazadaFiltroBciEmpresa, outcome.Status)
}

func TestCompanyValidationFilterAPIError(t *testing.T) {
	t.Run("call failure", func(t *testing.T) {
		f := newFixture(t)
		f.filter.err = errors.New("filter unavailable")

		outcome := f.run(t, testRequest())
		assert.Equal(t, domain.StatusErrorApiCliente, outcome.Status)
		assert.Equal(t, int32(3), f.filter.calls.Load(), "filter call is retried")
	})

	t.Run("error body", func(t *testing.T) {
		f := newFixture(t)
		f.filter.result = &domain.RegulatorFilterResult{Error: strPtr("persona no evaluable")}

		outcome := f.run(t, testRequest())
		assert.Equal(t, domain.StatusErrorApiCliente, outcome.Status)
		assert.Equal(t, int32(1), f.filter.calls.Load())
	})
}

func TestCompanyValidationStudyFetchRetries(t *testing.T) {
	f := newFixture(t)
	f.registry.err = errors.New("legalbot timeout")

	outcome := f.run(t, testRequest())

	assert.Equal(t, domain.StatusErrorInterno, outcome.Status)
	assert.Equal(t, domain.BranchSystemError, outcome.LegalBot.Code)
	assert.Equal(t, int32(3), f.registry.calls.Load(), "fetch exhausts three attempts")
	assert.Contains(t, f.status.recorded(), domain.StatusErrorInterno)
	assert.Contains(t, f.notifier.notified(), domain.StatusErrorInterno)
}

func TestCompanyValidationRetrySucceedsOnThirdAttempt(t *testing.T) {
	// Two transient failures then a success settles in the same state as a
	// clean first-attempt run.
	f := newFixture(t)
	f.registry.failFirst = 2

	outcome := f.run(t, testRequest())

	assert.Equal(t, domain.StatusEmpresaValida, outcome.Status)
	assert.Equal(t, int32(3), f.registry.calls.Load())
	assert.True(t, outcome.RESCheckStarted)
	assert.Equal(t, 4, f.store.Len())
}

func TestCompanyValidationUnexpectedStudyAnswer(t *testing.T) {
	f := newFixture(t)
	f.registry.ref = &domain.StudyReference{Codigo: 13, Mensaje: "Error en descarga."}

	outcome := f.run(t, testRequest())
	assert.Equal(t, domain.StatusErrorInterno, outcome.Status)
}

func TestCompanyValidationBothBranchesReject(t *testing.T) {
	// When both branches reject, the ownership reason wins regardless of
	// completion order.
	f := newFixture(t)
	f.lookup.lookup.EntidadLegal.DatosBase.ActEconomicas = []domain.EconomicActivity{{Codigo: 842300}}
	f.processor.study.CompanyKind = 4

	outcome := f.run(t, testRequest())

	assert.Equal(t, domain.StatusRechazadaTipoSociedad, outcome.Status)
	assert.Equal(t, domain.BranchRejected, outcome.LegalBot.Code)
	assert.Equal(t, domain.BranchRejected, outcome.LegalEntity.Code)
}

func TestCompanyValidationRejectionUpdateLost(t *testing.T) {
	// A rejection whose status update cannot be recorded still terminates
	// the run, falling back to the generic error status.
	f := newFixture(t)
	f.lookup.lookup.EntidadLegal.DatosBase.ActEconomicas = []domain.EconomicActivity{{Codigo: 842300}}
	f.status.failStatus = domain.StatusRechazadaActividadesNoPermitidas

	outcome := f.run(t, testRequest())

	assert.Equal(t, domain.StatusErrorInterno, outcome.Status)
	assert.Equal(t, domain.BranchRejected, outcome.LegalEntity.Code)
	assert.Empty(t, outcome.LegalEntity.Reason)
	assert.NotContains(t, f.notifier.notified(), domain.StatusRechazadaActividadesNoPermitidas)
}

func TestCompanyValidationNotificationLost(t *testing.T) {
	// Notification delivery is best effort; losing it never changes the
	// terminal outcome.
	f := newFixture(t)
	f.notifier.err = errors.New("notify manager down")

	outcome := f.run(t, testRequest())
	assert.Equal(t, domain.StatusEmpresaValida, outcome.Status)
}

func TestCompanyValidationInitialUpdateFails(t *testing.T) {
	f := newFixture(t)
	f.status.failAll = true

	f.env.ExecuteWorkflow(WorkflowCompanyValidation, testRequest())
	require.True(t, f.env.IsWorkflowCompleted())

	err := f.env.GetWorkflowError()
	require.Error(t, err)
	var appErr *temporal.ApplicationError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, string(domain.StatusErrorInterno), appErr.Type())
}

func TestCompanyValidationInvalidRequest(t *testing.T) {
	f := newFixture(t)
	req := testRequest()
	req.Rut = "not-a-rut"

	f.env.ExecuteWorkflow(WorkflowCompanyValidation, req)
	require.True(t, f.env.IsWorkflowCompleted())

	err := f.env.GetWorkflowError()
	require.Error(t, err)
	var appErr *temporal.ApplicationError
	require.ErrorAs(t, err, &appErr)
	assert.True(t, appErr.NonRetryable())
}
