package services

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/medicore-api/internal/apperr"
	"github.com/harentsoaR/medicore-api/internal/metrics"
	"github.com/harentsoaR/medicore-api/internal/models"
	"github.com/harentsoaR/medicore-api/internal/store"
	"github.com/harentsoaR/medicore-api/internal/validation"
)

// AppointmentInput is the booking form. The doctor is named, not referenced
// by id, because the booking client only knows names and departments.
type AppointmentInput struct {
	FirstName       string `json:"firstName" validate:"required,min=3"`
	LastName        string `json:"lastName" validate:"required,min=3"`
	Email           string `json:"email" validate:"required,email"`
	Phone           string `json:"phone" validate:"required,digits=11"`
	NIC             string `json:"nic" validate:"required,digits=13"`
	DOB             string `json:"dob" validate:"required,date"`
	Gender          string `json:"gender" validate:"required,oneof=Male Female"`
	AppointmentDate string `json:"appointment_date" validate:"required,date"`
	Department      string `json:"department" validate:"required"`
	DoctorFirstName string `json:"doctor_firstName" validate:"required"`
	DoctorLastName  string `json:"doctor_lastName" validate:"required"`
	Address         string `json:"address" validate:"required"`
}

func (in *AppointmentInput) normalize() {
	trim(&in.FirstName, &in.LastName, &in.Phone, &in.NIC, &in.Department,
		&in.DoctorFirstName, &in.DoctorLastName, &in.Address)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
}

type AppointmentService struct {
	users        store.UserStore
	appointments store.AppointmentStore
	notifier     Notifier
	metrics      *metrics.Metrics
	log          logrus.FieldLogger
}

func NewAppointmentService(users store.UserStore, appointments store.AppointmentStore, notifier Notifier, m *metrics.Metrics, log logrus.FieldLogger) *AppointmentService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &AppointmentService{users: users, appointments: appointments, notifier: notifier, metrics: m, log: log}
}

// Create books an appointment for patient. The doctor lookup and the insert
// are separate store calls.
func (s *AppointmentService) Create(ctx context.Context, patient *models.User, in AppointmentInput) (*models.Appointment, error) {
	in.normalize()
	if err := validation.Struct(in); err != nil {
		return nil, apperr.From(err)
	}
	dob, err := validation.ParseDate(in.DOB)
	if err != nil {
		return nil, apperr.Validation("dob must be a valid date!")
	}
	date, err := validation.ParseDate(in.AppointmentDate)
	if err != nil {
		return nil, apperr.Validation("appointment_date must be a valid date!")
	}

	doctor, err := s.users.FindDoctor(ctx, in.DoctorFirstName, in.DoctorLastName, in.Department)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound("Doctor not found!")
	}
	if err != nil {
		return nil, apperr.From(err)
	}

	apt := &models.Appointment{
		ID:              primitive.NewObjectID(),
		FirstName:       in.FirstName,
		LastName:        in.LastName,
		Email:           in.Email,
		Phone:           in.Phone,
		NIC:             in.NIC,
		DOB:             dob,
		Gender:          models.Gender(in.Gender),
		AppointmentDate: date,
		Department:      in.Department,
		Doctor:          models.DoctorName{FirstName: doctor.FirstName, LastName: doctor.LastName},
		HasVisited:      false,
		Address:         in.Address,
		DoctorID:        doctor.ID,
		PatientID:       patient.ID,
		Status:          models.StatusPending,
	}
	if err := s.appointments.Create(ctx, apt); err != nil {
		return nil, apperr.From(err)
	}

	s.metrics.Appointment("created", string(apt.Status))
	s.log.WithFields(logrus.Fields{
		"appointment_id": apt.ID.Hex(),
		"patient_id":     patient.ID.Hex(),
		"doctor_id":      doctor.ID.Hex(),
	}).Info("Appointment booked")
	return apt, nil
}

// AppointmentQuery is the admin listing's optional filter, as sent in the
// query string. Dates are calendar days.
type AppointmentQuery struct {
	Status    string `form:"status"`
	StartDate string `form:"startDate"`
	EndDate   string `form:"endDate"`
}

func (q AppointmentQuery) filter() (store.AppointmentFilter, error) {
	var f store.AppointmentFilter
	if q.Status != "" {
		status, err := models.ParseAppointmentStatus(q.Status)
		if err != nil {
			return f, apperr.Validation("Invalid status value!")
		}
		f.Status = status
	}
	if q.StartDate != "" {
		from, err := validation.ParseDay(q.StartDate)
		if err != nil {
			return f, apperr.Validation("startDate must be a date (YYYY-MM-DD)!")
		}
		f.From = from
	}
	if q.EndDate != "" {
		to, err := validation.ParseDay(q.EndDate)
		if err != nil {
			return f, apperr.Validation("endDate must be a date (YYYY-MM-DD)!")
		}
		f.To = to
	}
	return f, nil
}

// ListAll returns the matching appointments with both user references
// expanded.
func (s *AppointmentService) ListAll(ctx context.Context, q AppointmentQuery) ([]models.AppointmentView, error) {
	filter, err := q.filter()
	if err != nil {
		return nil, err
	}
	apts, err := s.appointments.List(ctx, filter)
	if err != nil {
		return nil, apperr.From(err)
	}

	ids := make([]primitive.ObjectID, 0, 2*len(apts))
	for _, a := range apts {
		ids = append(ids, a.DoctorID, a.PatientID)
	}
	refs, err := s.users.FindRefs(ctx, ids)
	if err != nil {
		return nil, apperr.From(err)
	}

	views := make([]models.AppointmentView, 0, len(apts))
	for i := range apts {
		views = append(views, apts[i].View(refs[apts[i].DoctorID], refs[apts[i].PatientID]))
	}
	return views, nil
}

// ListForPatient returns the caller's appointments by ascending date. Asking
// for another patient's list is Forbidden.
func (s *AppointmentService) ListForPatient(ctx context.Context, caller *models.User, patientHex string) ([]models.AppointmentView, error) {
	patientID, err := parseID(patientHex)
	if err != nil {
		return nil, err
	}
	if patientID != caller.ID {
		return nil, apperr.Forbidden("You can only view your own appointments!")
	}

	apts, err := s.appointments.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, apperr.From(err)
	}
	ids := make([]primitive.ObjectID, 0, len(apts))
	for _, a := range apts {
		ids = append(ids, a.DoctorID)
	}
	refs, err := s.users.FindRefs(ctx, ids)
	if err != nil {
		return nil, apperr.From(err)
	}

	self := caller.Ref()
	views := make([]models.AppointmentView, 0, len(apts))
	for i := range apts {
		views = append(views, apts[i].View(refs[apts[i].DoctorID], self))
	}
	return views, nil
}

// UpdateStatus moves an appointment to any status; there is no transition
// graph. An unknown status is rejected before the store is touched.
func (s *AppointmentService) UpdateStatus(ctx context.Context, idHex, status string) (*models.Appointment, error) {
	next, err := models.ParseAppointmentStatus(status)
	if err != nil {
		return nil, apperr.Validation("Invalid status value!")
	}
	id, err := parseID(idHex)
	if err != nil {
		return nil, err
	}

	apt, err := s.appointments.UpdateStatus(ctx, id, next)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound("Appointment not found!")
	}
	if err != nil {
		return nil, apperr.From(err)
	}

	s.metrics.Appointment("status_changed", string(next))
	s.notify(ctx, apt)
	return apt, nil
}

func (s *AppointmentService) notify(ctx context.Context, apt *models.Appointment) {
	patient, err := s.users.FindByID(ctx, apt.PatientID)
	if err != nil {
		s.log.WithError(err).WithField("appointment_id", apt.ID.Hex()).Warn("Patient lookup for notification failed")
		return
	}
	s.notifier.AppointmentStatusChanged(patient, apt)
}

func (s *AppointmentService) Delete(ctx context.Context, idHex string) error {
	id, err := parseID(idHex)
	if err != nil {
		return err
	}
	if err := s.appointments.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperr.NotFound("Appointment not found!")
		}
		return apperr.From(err)
	}
	s.metrics.Appointment("deleted", "")
	return nil
}

// DeleteOwn lets a patient cancel one of their own appointments.
func (s *AppointmentService) DeleteOwn(ctx context.Context, caller *models.User, idHex string) error {
	id, err := parseID(idHex)
	if err != nil {
		return err
	}
	apt, err := s.appointments.FindByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return apperr.NotFound("Appointment not found!")
	}
	if err != nil {
		return apperr.From(err)
	}
	if apt.PatientID != caller.ID {
		return apperr.Forbidden("You can only delete your own appointments!")
	}
	return s.Delete(ctx, idHex)
}
