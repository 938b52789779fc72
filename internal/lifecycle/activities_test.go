package lifecycle

import (
	"context"
	"errors"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onboarding-cl/company-validation/internal/domain"
	pkgactivity "github.com/onboarding-cl/company-validation/pkg/activity"
	"github.com/onboarding-cl/company-validation/pkg/events"
)

type captureSink struct {
	envelopes []events.Envelope
	err       error
}

func (s *captureSink) Append(_ context.Context, envelope events.Envelope) error {
	if s.err != nil {
		return s.err
	}
	s.envelopes = append(s.envelopes, envelope)
	return nil
}

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

func TestEmitStarted(t *testing.T) {
	sink := &captureSink{}
	acts := NewActivities(pkgactivity.NewBaseActivities(sink), sink)
	req := testRequest()

	require.NoError(t, acts.EmitStarted(context.Background(), req))
	require.Len(t, sink.envelopes, 1)

	env := sink.envelopes[0]
	assert.Equal(t, events.TypeValidationStarted, env.Type)
	assert.Equal(t, events.Source, env.Source)
	assert.Equal(t, req.ProcessID, env.ProcessID)
	assert.Equal(t, req.CustomerCode, env.Customer)
	assert.NotEmpty(t, env.ID)

	var payload startedPayload
	require.NoError(t, json.Unmarshal(env.Payload, &payload))
	assert.Equal(t, "INICIANDO_PRECALIFICACION", payload.EventName)
	assert.Equal(t, domain.StatusPrecalificacion, payload.Status)
	assert.Equal(t, req.Product, payload.Product)
}

func TestEmitStartedSinkFailureGatesRun(t *testing.T) {
	sink := &captureSink{err: errors.New("bus unavailable")}
	acts := NewActivities(pkgactivity.NewBaseActivities(sink), sink)

	err := acts.EmitStarted(context.Background(), testRequest())
	require.Error(t, err)
}

func TestEmitFinishedBestEffort(t *testing.T) {
	t.Run("delivered", func(t *testing.T) {
		sink := &captureSink{}
		acts := NewActivities(pkgactivity.NewBaseActivities(sink), sink)

		err := acts.EmitFinished(context.Background(), EmitFinishedInput{
			Request:         testRequest(),
			Status:          domain.StatusEmpresaValida,
			RESCheckStarted: true,
		})
		require.NoError(t, err)
		require.Len(t, sink.envelopes, 1)
		assert.Equal(t, events.TypeValidationFinished, sink.envelopes[0].Type)
	})

	t.Run("sink failure is swallowed", func(t *testing.T) {
		sink := &captureSink{err: errors.New("bus unavailable")}
		acts := NewActivities(pkgactivity.NewBaseActivities(sink), sink)

		err := acts.EmitFinished(context.Background(), EmitFinishedInput{
			Request: testRequest(),
			Status:  domain.StatusErrorInterno,
		})
		require.NoError(t, err)
	})
}
