package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := New()

	m.Auth("login", "role_mismatch")
	m.Auth("login", "role_mismatch")
	m.Appointment("status_changed", "Accepted")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.AuthAttempts.WithLabelValues("login", "role_mismatch")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AppointmentEvents.WithLabelValues("status_changed", "Accepted")))
}

func TestNilReceiverIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Auth("login", "ok")
		m.Appointment("created", "Pending")
	})
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.Auth("register", "ok")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `auth_attempts_total{action="register",outcome="ok"} 1`)
}
