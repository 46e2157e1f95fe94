package services

import (
	"bytes"
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/harentsoaR/medicore-api/internal/logging"
	"github.com/harentsoaR/medicore-api/internal/metrics"
	"github.com/harentsoaR/medicore-api/internal/models"
	"github.com/harentsoaR/medicore-api/internal/store/storetest"
	"github.com/harentsoaR/medicore-api/internal/utils"
)

// pngHeader is enough for content sniffing to report image/png.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

type fixture struct {
	users        *storetest.Users
	appointments *storetest.Appointments
	messages     *storetest.Messages
	avatars      *storetest.Avatars
	notifier     *recordingNotifier
	metrics      *metrics.Metrics

	accounts *AccountService
	booking  *AppointmentService
	inbox    *MessageService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		users:        storetest.NewUsers(),
		appointments: storetest.NewAppointments(),
		messages:     storetest.NewMessages(),
		avatars:      storetest.NewAvatars(),
		notifier:     &recordingNotifier{},
		metrics:      metrics.New(),
	}
	log := logging.Discard()
	hasher := utils.NewPasswordHasher(bcrypt.MinCost)
	f.accounts = NewAccountService(f.users, f.avatars, hasher, f.metrics, log)
	f.booking = NewAppointmentService(f.users, f.appointments, f.notifier, f.metrics, log)
	f.inbox = NewMessageService(f.messages, log)
	return f
}

func registerInput(email string) RegisterInput {
	return RegisterInput{
		FirstName: "Ayesha",
		LastName:  "Khan",
		Email:     email,
		Phone:     "0300123456",
		NIC:       "1234567890123",
		DOB:       "1990-01-01",
		Gender:    "Female",
		Password:  "s3cretpass",
	}
}

func doctorInput(first, last, dept, email string) DoctorInput {
	in := DoctorInput{RegisterInput: registerInput(email), DoctorDepartment: dept}
	in.FirstName, in.LastName = first, last
	return in
}

func (f *fixture) patient(t *testing.T, email string) *models.User {
	t.Helper()
	p, err := f.accounts.RegisterPatient(context.Background(), registerInput(email))
	require.NoError(t, err)
	return p
}

func (f *fixture) doctor(t *testing.T, first, last, dept, email string) *models.User {
	t.Helper()
	d, err := f.accounts.CreateDoctor(context.Background(), doctorInput(first, last, dept, email), pngUpload())
	require.NoError(t, err)
	return d
}

func pngUpload() *Upload {
	return &Upload{File: bytes.NewReader(pngHeader), Size: int64(len(pngHeader))}
}

type recordingNotifier struct {
	mu    sync.Mutex
	calls []*models.Appointment
}

func (n *recordingNotifier) AppointmentStatusChanged(_ *models.User, apt *models.Appointment) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, apt)
}

func (n *recordingNotifier) Calls() []*models.Appointment {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]*models.Appointment(nil), n.calls...)
}
