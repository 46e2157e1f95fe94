// Package store is the document-store access layer. Workflows depend on the
// interfaces here; the Mongo implementations live alongside them.
package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/medicore-api/internal/models"
)

// ErrNotFound is returned when a lookup or write matches no document.
var ErrNotFound = errors.New("store: document not found")

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	// FindByID never returns the password hash.
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	// FindByEmailWithPassword is the only read that includes the hash.
	FindByEmailWithPassword(ctx context.Context, email string) (*models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	// EmailOwner returns the id of the account registered under email.
	EmailOwner(ctx context.Context, email string) (primitive.ObjectID, error)
	FindDoctor(ctx context.Context, firstName, lastName, department string) (*models.User, error)
	FindRefs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.UserRef, error)
	ListByRole(ctx context.Context, role models.Role, skip, limit int64) ([]models.User, int64, error)
	UpdateDoctor(ctx context.Context, id primitive.ObjectID, update models.DoctorUpdate) (*models.User, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	HasRole(ctx context.Context, role models.Role) (bool, error)
}

// AppointmentFilter narrows the admin listing. Zero fields match everything;
// To includes the whole of its day.
type AppointmentFilter struct {
	Status models.AppointmentStatus
	From   time.Time
	To     time.Time
}

// EndOfDay is the last instant counted as part of To's day.
func (f AppointmentFilter) EndOfDay() time.Time {
	return f.To.Add(24*time.Hour - time.Nanosecond)
}

type AppointmentStore interface {
	Create(ctx context.Context, apt *models.Appointment) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Appointment, error)
	// List sorts by creation time.
	List(ctx context.Context, filter AppointmentFilter) ([]models.Appointment, error)
	// ListByPatient sorts by ascending appointment date.
	ListByPatient(ctx context.Context, patientID primitive.ObjectID) ([]models.Appointment, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.AppointmentStatus) (*models.Appointment, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type MessageStore interface {
	Create(ctx context.Context, msg *models.Message) error
	// List returns newest first.
	List(ctx context.Context) ([]models.Message, error)
}

// Pinger reports store health.
type Pinger interface {
	Ping(ctx context.Context) error
}

var (
	_ UserStore        = (*MongoUserStore)(nil)
	_ AppointmentStore = (*MongoAppointmentStore)(nil)
	_ MessageStore     = (*MongoMessageStore)(nil)
	_ Pinger           = (*DB)(nil)
)
