package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/harentsoaR/medicore-api/internal/models"
)

const TextbeltEndpoint = "https://textbelt.com/text"

// Notifier tells a patient their appointment changed. Implementations must
// not block the caller.
type Notifier interface {
	AppointmentStatusChanged(patient *models.User, apt *models.Appointment)
}

type NopNotifier struct{}

func (NopNotifier) AppointmentStatusChanged(*models.User, *models.Appointment) {}

// NotificationService sends SMS through Textbelt.
type NotificationService struct {
	apiKey   string
	endpoint string
	client   *http.Client
	log      logrus.FieldLogger
}

// NewNotificationService returns a NopNotifier when apiKey is empty.
func NewNotificationService(apiKey, endpoint string, log logrus.FieldLogger) Notifier {
	if apiKey == "" {
		log.Info("TEXTBELT_API_KEY not set, SMS notifications disabled")
		return NopNotifier{}
	}
	if endpoint == "" {
		endpoint = TextbeltEndpoint
	}
	return &NotificationService{
		apiKey:   apiKey,
		endpoint: endpoint,
		client:   &http.Client{Timeout: 10 * time.Second},
		log:      log,
	}
}

func (s *NotificationService) AppointmentStatusChanged(patient *models.User, apt *models.Appointment) {
	if patient.Phone == "" {
		s.log.WithField("patient_id", patient.ID.Hex()).Info("SMS not sent: patient has no phone number")
		return
	}
	go s.send(patient.Phone, StatusMessage(apt))
}

// StatusMessage is the SMS body for an appointment status change.
func StatusMessage(apt *models.Appointment) string {
	return fmt.Sprintf(
		"Your %s appointment with Dr. %s %s on %s is now %s.",
		apt.Department,
		apt.Doctor.FirstName,
		apt.Doctor.LastName,
		apt.AppointmentDate.Format("Jan 2 at 3:04 PM"),
		apt.Status,
	)
}

type textbeltResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func (s *NotificationService) send(phone, message string) {
	log := s.log.WithField("phone", phone)

	body, err := json.Marshal(map[string]string{
		"phone":   phone,
		"message": message,
		"key":     s.apiKey,
	})
	if err != nil {
		log.WithError(err).Error("Failed to encode Textbelt request")
		return
	}

	resp, err := s.client.Post(s.endpoint, "application/json", bytes.NewReader(body))
	if err != nil {
		log.WithError(err).Error("Failed to send Textbelt request")
		return
	}
	defer resp.Body.Close()

	var result textbeltResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		log.WithError(err).Error("Unreadable Textbelt response")
		return
	}
	if !result.Success {
		log.WithField("reason", result.Error).Warn("Textbelt rejected SMS")
		return
	}
	log.Info("Sent appointment SMS")
}
