// Package storetest provides in-memory stores for tests. They follow the
// Mongo implementations' contracts: unique emails, password hashes only on
// FindByEmailWithPassword, ErrNotFound on misses, ascending date order for
// ListByPatient.
package storetest

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/medicore-api/internal/apperr"
	"github.com/harentsoaR/medicore-api/internal/models"
	"github.com/harentsoaR/medicore-api/internal/store"
)

type Users struct {
	mu    sync.Mutex
	users []models.User
	// Err, when set, is returned by every call.
	Err error
}

func NewUsers() *Users { return &Users{} }

func (s *Users) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

func (s *Users) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	for _, u := range s.users {
		if u.Email == user.Email {
			return apperr.Conflict("Duplicate email entered")
		}
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	user.CreatedAt, user.UpdatedAt = now, now
	s.users = append(s.users, *user)
	return nil
}

func (s *Users) find(match func(*models.User) bool) (*models.User, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	for i := range s.users {
		if match(&s.users[i]) {
			u := s.users[i]
			return &u, nil
		}
	}
	return nil, store.ErrNotFound
}

func stripped(u *models.User, err error) (*models.User, error) {
	if u != nil {
		u.Password = ""
	}
	return u, err
}

func (s *Users) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return stripped(s.find(func(u *models.User) bool { return u.ID == id }))
}

func (s *Users) FindByEmailWithPassword(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.find(func(u *models.User) bool { return u.Email == email })
}

func (s *Users) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := s.FindByEmailWithPassword(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (s *Users) EmailOwner(_ context.Context, email string) (primitive.ObjectID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, err := s.find(func(u *models.User) bool { return u.Email == email })
	if err != nil {
		return primitive.NilObjectID, err
	}
	return u.ID, nil
}

func (s *Users) FindDoctor(_ context.Context, firstName, lastName, department string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return stripped(s.find(func(u *models.User) bool {
		return u.Role == models.RoleDoctor && u.FirstName == firstName &&
			u.LastName == lastName && u.DoctorDepartment == department
	}))
}

func (s *Users) FindRefs(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.UserRef, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	want := make(map[primitive.ObjectID]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	refs := make(map[primitive.ObjectID]*models.UserRef)
	for i := range s.users {
		if want[s.users[i].ID] {
			refs[s.users[i].ID] = s.users[i].Ref()
		}
	}
	return refs, nil
}

func (s *Users) ListByRole(_ context.Context, role models.Role, skip, limit int64) ([]models.User, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, 0, s.Err
	}
	var matched []models.User
	for _, u := range s.users {
		if u.Role == role {
			u.Password = ""
			matched = append(matched, u)
		}
	}
	total := int64(len(matched))
	page := make([]models.User, 0)
	for i := skip; i < total && int64(len(page)) < limit; i++ {
		page = append(page, matched[i])
	}
	return page, total, nil
}

func (s *Users) UpdateDoctor(_ context.Context, id primitive.ObjectID, update models.DoctorUpdate) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	for i := range s.users {
		u := &s.users[i]
		if u.ID != id || u.Role != models.RoleDoctor {
			continue
		}
		if update.Email != nil {
			for _, other := range s.users {
				if other.ID != id && other.Email == *update.Email {
					return nil, apperr.Conflict("Duplicate email entered")
				}
			}
			u.Email = *update.Email
		}
		if update.FirstName != nil {
			u.FirstName = *update.FirstName
		}
		if update.LastName != nil {
			u.LastName = *update.LastName
		}
		if update.Phone != nil {
			u.Phone = *update.Phone
		}
		if update.DoctorDepartment != nil {
			u.DoctorDepartment = *update.DoctorDepartment
		}
		u.UpdatedAt = time.Now().UTC()
		out := *u
		out.Password = ""
		return &out, nil
	}
	return nil, store.ErrNotFound
}

func (s *Users) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	for i := range s.users {
		if s.users[i].ID == id {
			s.users = append(s.users[:i], s.users[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *Users) HasRole(_ context.Context, role models.Role) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return false, s.Err
	}
	for _, u := range s.users {
		if u.Role == role {
			return true, nil
		}
	}
	return false, nil
}

type Appointments struct {
	mu           sync.Mutex
	appointments []models.Appointment
	Err          error
}

func NewAppointments() *Appointments { return &Appointments{} }

func (s *Appointments) Create(_ context.Context, apt *models.Appointment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if apt.ID.IsZero() {
		apt.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	apt.CreatedAt, apt.UpdatedAt = now, now
	s.appointments = append(s.appointments, *apt)
	return nil
}

func (s *Appointments) FindByID(_ context.Context, id primitive.ObjectID) (*models.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	for _, a := range s.appointments {
		if a.ID == id {
			return &a, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Appointments) List(_ context.Context, filter store.AppointmentFilter) ([]models.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	out := make([]models.Appointment, 0, len(s.appointments))
	for _, a := range s.appointments {
		switch {
		case filter.Status != "" && a.Status != filter.Status:
		case !filter.From.IsZero() && a.AppointmentDate.Before(filter.From):
		case !filter.To.IsZero() && a.AppointmentDate.After(filter.EndOfDay()):
		default:
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *Appointments) ListByPatient(_ context.Context, patientID primitive.ObjectID) ([]models.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	out := make([]models.Appointment, 0)
	for _, a := range s.appointments {
		if a.PatientID == patientID {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].AppointmentDate.Before(out[j].AppointmentDate)
	})
	return out, nil
}

func (s *Appointments) UpdateStatus(_ context.Context, id primitive.ObjectID, status models.AppointmentStatus) (*models.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	for i := range s.appointments {
		if s.appointments[i].ID == id {
			s.appointments[i].Status = status
			s.appointments[i].UpdatedAt = time.Now().UTC()
			a := s.appointments[i]
			return &a, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Appointments) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	for i := range s.appointments {
		if s.appointments[i].ID == id {
			s.appointments = append(s.appointments[:i], s.appointments[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

type Messages struct {
	mu       sync.Mutex
	messages []models.Message
	Err      error
}

func NewMessages() *Messages { return &Messages{} }

func (s *Messages) Create(_ context.Context, msg *models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if msg.ID.IsZero() {
		msg.ID = primitive.NewObjectID()
	}
	msg.CreatedAt = time.Now().UTC()
	s.messages = append(s.messages, *msg)
	return nil
}

func (s *Messages) List(_ context.Context) ([]models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	out := make([]models.Message, 0, len(s.messages))
	for i := len(s.messages) - 1; i >= 0; i-- {
		out = append(out, s.messages[i])
	}
	return out, nil
}

var (
	_ store.UserStore        = (*Users)(nil)
	_ store.AppointmentStore = (*Appointments)(nil)
	_ store.MessageStore     = (*Messages)(nil)
)
