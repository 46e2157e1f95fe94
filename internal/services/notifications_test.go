package services

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harentsoaR/medicore-api/internal/logging"
	"github.com/harentsoaR/medicore-api/internal/models"
)

func TestNotificationServiceDisabledWithoutKey(t *testing.T) {
	n := NewNotificationService("", "", logging.Discard())
	assert.IsType(t, NopNotifier{}, n)
}

func TestStatusMessage(t *testing.T) {
	apt := &models.Appointment{
		Department:      "Cardiology",
		Doctor:          models.DoctorName{FirstName: "Gregory", LastName: "House"},
		AppointmentDate: time.Date(2025, 3, 4, 15, 4, 0, 0, time.UTC),
		Status:          models.StatusAccepted,
	}
	assert.Equal(t, "Your Cardiology appointment with Dr. Gregory House on Mar 4 at 3:04 PM is now Accepted.", StatusMessage(apt))
}

func TestTextbeltSend(t *testing.T) {
	received := make(chan map[string]string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		received <- body
		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	n, ok := NewNotificationService("key-123", srv.URL, logging.Discard()).(*NotificationService)
	require.True(t, ok)

	n.AppointmentStatusChanged(
		&models.User{Phone: "0300123456"},
		&models.Appointment{Status: models.StatusRejected},
	)

	select {
	case body := <-received:
		assert.Equal(t, "0300123456", body["phone"])
		assert.Equal(t, "key-123", body["key"])
		assert.Contains(t, body["message"], "Rejected")
	case <-time.After(2 * time.Second):
		t.Fatal("Textbelt endpoint was not called")
	}
}
