package services

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harentsoaR/medicore-api/internal/apperr"
	"github.com/harentsoaR/medicore-api/internal/models"
	"github.com/harentsoaR/medicore-api/internal/store"
)

func bookingInput(date string) AppointmentInput {
	return AppointmentInput{
		FirstName:       "Ayesha",
		LastName:        "Khan",
		Email:           "p@x.com",
		Phone:           "03001234567",
		NIC:             "1234567890123",
		DOB:             "1990-01-01",
		Gender:          "Female",
		AppointmentDate: date,
		Department:      "Cardiology",
		DoctorFirstName: "Gregory",
		DoctorLastName:  "House",
		Address:         "12 Mall Road, Lahore",
	}
}

func TestCreateAppointment(t *testing.T) {
	f := newFixture(t)
	p := f.patient(t, "p@x.com")
	d := f.doctor(t, "Gregory", "House", "Cardiology", "house@x.com")

	apt, err := f.booking.Create(context.Background(), p, bookingInput("2025-03-04T10:30"))
	require.NoError(t, err)

	assert.Equal(t, models.StatusPending, apt.Status)
	assert.False(t, apt.HasVisited)
	assert.Equal(t, d.ID, apt.DoctorID)
	assert.Equal(t, p.ID, apt.PatientID)
	assert.Equal(t, models.DoctorName{FirstName: "Gregory", LastName: "House"}, apt.Doctor)
	assert.Equal(t, time.Date(2025, 3, 4, 10, 30, 0, 0, time.UTC), apt.AppointmentDate)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.AppointmentEvents.WithLabelValues("created", "Pending")))
}

func TestCreateAppointmentUnknownDoctor(t *testing.T) {
	f := newFixture(t)
	p := f.patient(t, "p@x.com")
	f.doctor(t, "Gregory", "House", "Neurology", "house@x.com")

	_, err := f.booking.Create(context.Background(), p, bookingInput("2025-03-04"))
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
	assert.Equal(t, 404, apperr.From(err).Status())

	all, err := f.appointments.List(context.Background(), store.AppointmentFilter{})
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestCreateAppointmentValidation(t *testing.T) {
	f := newFixture(t)
	p := f.patient(t, "p@x.com")
	f.doctor(t, "Gregory", "House", "Cardiology", "house@x.com")

	in := bookingInput("2025-03-04")
	in.Address = " "
	_, err := f.booking.Create(context.Background(), p, in)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	in = bookingInput("2025-03-04")
	in.Phone = "0300123456"
	_, err = f.booking.Create(context.Background(), p, in)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestDoctorSnapshotSurvivesProfileEdit(t *testing.T) {
	f := newFixture(t)
	p := f.patient(t, "p@x.com")
	d := f.doctor(t, "Gregory", "House", "Cardiology", "house@x.com")

	apt, err := f.booking.Create(context.Background(), p, bookingInput("2025-03-04"))
	require.NoError(t, err)

	renamed := "Gregor"
	_, err = f.accounts.UpdateDoctor(context.Background(), d.ID.Hex(), DoctorUpdateInput{FirstName: &renamed})
	require.NoError(t, err)

	stored, err := f.appointments.FindByID(context.Background(), apt.ID)
	require.NoError(t, err)
	assert.Equal(t, "Gregory", stored.Doctor.FirstName)

	views, err := f.booking.ListAll(context.Background(), AppointmentQuery{})
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "Gregory", views[0].Doctor.FirstName)
	assert.Equal(t, "Gregor", views[0].DoctorID.FirstName)
}

func TestUpdateStatus(t *testing.T) {
	f := newFixture(t)
	p := f.patient(t, "p@x.com")
	f.doctor(t, "Gregory", "House", "Cardiology", "house@x.com")
	apt, err := f.booking.Create(context.Background(), p, bookingInput("2025-03-04"))
	require.NoError(t, err)

	for _, status := range []string{"Accepted", "Rejected", "Pending"} {
		updated, err := f.booking.UpdateStatus(context.Background(), apt.ID.Hex(), status)
		require.NoError(t, err)
		assert.Equal(t, models.AppointmentStatus(status), updated.Status)
	}

	calls := f.notifier.Calls()
	require.Len(t, calls, 3)
	assert.Equal(t, models.StatusAccepted, calls[0].Status)
}

func TestUpdateStatusRejectsUnknownValue(t *testing.T) {
	f := newFixture(t)
	p := f.patient(t, "p@x.com")
	f.doctor(t, "Gregory", "House", "Cardiology", "house@x.com")
	apt, err := f.booking.Create(context.Background(), p, bookingInput("2025-03-04"))
	require.NoError(t, err)

	for _, status := range []string{"Done", "accepted", ""} {
		_, err := f.booking.UpdateStatus(context.Background(), apt.ID.Hex(), status)
		assert.True(t, apperr.IsKind(err, apperr.KindValidation), status)
	}

	stored, err := f.appointments.FindByID(context.Background(), apt.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, stored.Status)
	assert.Equal(t, apt.UpdatedAt, stored.UpdatedAt)
	assert.Empty(t, f.notifier.Calls())
}

func TestUpdateStatusUnknownAppointment(t *testing.T) {
	f := newFixture(t)

	_, err := f.booking.UpdateStatus(context.Background(), "64b7f0c2a1b2c3d4e5f60718", "Accepted")
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestListAllExpandsReferences(t *testing.T) {
	f := newFixture(t)
	p := f.patient(t, "p@x.com")
	d := f.doctor(t, "Gregory", "House", "Cardiology", "house@x.com")
	_, err := f.booking.Create(context.Background(), p, bookingInput("2025-03-04"))
	require.NoError(t, err)

	views, err := f.booking.ListAll(context.Background(), AppointmentQuery{})
	require.NoError(t, err)
	require.Len(t, views, 1)
	require.NotNil(t, views[0].PatientID)
	assert.Equal(t, "p@x.com", views[0].PatientID.Email)
	require.NotNil(t, views[0].DoctorID)
	assert.Equal(t, "Cardiology", views[0].DoctorID.DoctorDepartment)

	require.NoError(t, f.accounts.DeleteDoctor(context.Background(), d.ID.Hex()))
	views, err = f.booking.ListAll(context.Background(), AppointmentQuery{})
	require.NoError(t, err)
	assert.Nil(t, views[0].DoctorID)
	assert.Equal(t, "House", views[0].Doctor.LastName)
}

func TestListForPatient(t *testing.T) {
	f := newFixture(t)
	p := f.patient(t, "p@x.com")
	other := f.patient(t, "q@x.com")
	f.doctor(t, "Gregory", "House", "Cardiology", "house@x.com")

	for _, date := range []string{"2025-05-01", "2025-03-01", "2025-04-01"} {
		_, err := f.booking.Create(context.Background(), p, bookingInput(date))
		require.NoError(t, err)
	}
	_, err := f.booking.Create(context.Background(), other, bookingInput("2025-01-01"))
	require.NoError(t, err)

	views, err := f.booking.ListForPatient(context.Background(), p, p.ID.Hex())
	require.NoError(t, err)
	require.Len(t, views, 3)
	assert.Equal(t, time.March, views[0].AppointmentDate.Month())
	assert.Equal(t, time.May, views[2].AppointmentDate.Month())
	assert.Equal(t, p.ID, views[0].PatientID.ID)
	assert.Equal(t, "House", views[0].DoctorID.LastName)

	_, err = f.booking.ListForPatient(context.Background(), p, other.ID.Hex())
	assert.True(t, apperr.IsKind(err, apperr.KindForbidden))
}

func TestDeleteAppointment(t *testing.T) {
	f := newFixture(t)
	p := f.patient(t, "p@x.com")
	f.doctor(t, "Gregory", "House", "Cardiology", "house@x.com")
	apt, err := f.booking.Create(context.Background(), p, bookingInput("2025-03-04"))
	require.NoError(t, err)

	require.NoError(t, f.booking.Delete(context.Background(), apt.ID.Hex()))
	err = f.booking.Delete(context.Background(), apt.ID.Hex())
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestDeleteOwnAppointment(t *testing.T) {
	f := newFixture(t)
	p := f.patient(t, "p@x.com")
	other := f.patient(t, "q@x.com")
	f.doctor(t, "Gregory", "House", "Cardiology", "house@x.com")
	apt, err := f.booking.Create(context.Background(), p, bookingInput("2025-03-04"))
	require.NoError(t, err)

	err = f.booking.DeleteOwn(context.Background(), other, apt.ID.Hex())
	assert.True(t, apperr.IsKind(err, apperr.KindForbidden))

	require.NoError(t, f.booking.DeleteOwn(context.Background(), p, apt.ID.Hex()))

	err = f.booking.DeleteOwn(context.Background(), p, apt.ID.Hex())
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestListAllFilters(t *testing.T) {
	f := newFixture(t)
	p := f.patient(t, "p@x.com")
	f.doctor(t, "Gregory", "House", "Cardiology", "house@x.com")

	var ids []string
	for _, date := range []string{"2025-03-01T09:00", "2025-03-02T17:45", "2025-03-03T08:00"} {
		apt, err := f.booking.Create(context.Background(), p, bookingInput(date))
		require.NoError(t, err)
		ids = append(ids, apt.ID.Hex())
	}
	_, err := f.booking.UpdateStatus(context.Background(), ids[0], "Accepted")
	require.NoError(t, err)

	views, err := f.booking.ListAll(context.Background(), AppointmentQuery{Status: "Accepted"})
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, ids[0], views[0].ID.Hex())

	views, err = f.booking.ListAll(context.Background(), AppointmentQuery{StartDate: "2025-03-02", EndDate: "2025-03-02"})
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, ids[1], views[0].ID.Hex())

	_, err = f.booking.ListAll(context.Background(), AppointmentQuery{Status: "Done"})
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	// Filters take calendar days only.
	for _, q := range []AppointmentQuery{
		{EndDate: "2025-03-01T10:00:00Z"},
		{StartDate: "2025-03-02T17:00"},
	} {
		_, err = f.booking.ListAll(context.Background(), q)
		assert.True(t, apperr.IsKind(err, apperr.KindValidation), q)
	}
}
