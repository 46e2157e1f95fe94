package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/medicore-api/internal/apperr"
	"github.com/harentsoaR/medicore-api/internal/metrics"
	"github.com/harentsoaR/medicore-api/internal/models"
	"github.com/harentsoaR/medicore-api/internal/storage"
	"github.com/harentsoaR/medicore-api/internal/store"
	"github.com/harentsoaR/medicore-api/internal/utils"
	"github.com/harentsoaR/medicore-api/internal/validation"
)

// AllowedAvatarTypes are the image formats accepted for doctor avatars.
var AllowedAvatarTypes = []string{"image/png", "image/jpeg", "image/webp"}

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// RegisterInput is the identity and credential every account is created with.
type RegisterInput struct {
	FirstName string `json:"firstName" form:"firstName" validate:"required,min=3"`
	LastName  string `json:"lastName" form:"lastName" validate:"required,min=3"`
	Email     string `json:"email" form:"email" validate:"required,email"`
	Phone     string `json:"phone" form:"phone" validate:"required,digits=10"`
	NIC       string `json:"nic" form:"nic" validate:"required,digits=13"`
	DOB       string `json:"dob" form:"dob" validate:"required,date"`
	Gender    string `json:"gender" form:"gender" validate:"required,oneof=Male Female"`
	Password  string `json:"password" form:"password" validate:"required,min=8"`
}

func (in *RegisterInput) normalize() {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Phone = strings.TrimSpace(in.Phone)
	in.NIC = strings.TrimSpace(in.NIC)
}

type DoctorInput struct {
	RegisterInput
	DoctorDepartment string `json:"doctorDepartment" form:"doctorDepartment" validate:"required"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role" validate:"required"`
}

type DoctorUpdateInput struct {
	FirstName        *string `json:"firstName" validate:"omitempty,min=3"`
	LastName         *string `json:"lastName" validate:"omitempty,min=3"`
	Email            *string `json:"email" validate:"omitempty,email"`
	Phone            *string `json:"phone" validate:"omitempty,digits=10"`
	DoctorDepartment *string `json:"doctorDepartment" validate:"omitempty,min=1"`
}

// Upload is an avatar file as received from the client.
type Upload struct {
	File io.ReadSeeker
	Size int64
}

type DoctorPage struct {
	Doctors    []models.User `json:"doctors"`
	Page       int64         `json:"page"`
	TotalPages int64         `json:"totalPages"`
	Total      int64         `json:"total"`
}

type AccountService struct {
	users   store.UserStore
	avatars storage.AvatarStore
	hasher  *utils.PasswordHasher
	metrics *metrics.Metrics
	log     logrus.FieldLogger
}

func NewAccountService(users store.UserStore, avatars storage.AvatarStore, hasher *utils.PasswordHasher, m *metrics.Metrics, log logrus.FieldLogger) *AccountService {
	return &AccountService{users: users, avatars: avatars, hasher: hasher, metrics: m, log: log}
}

// RegisterPatient is patient self-service signup.
func (s *AccountService) RegisterPatient(ctx context.Context, in RegisterInput) (*models.User, error) {
	user, err := s.create(ctx, in, models.RolePatient)
	s.recordAuth("register", err)
	return user, err
}

func (s *AccountService) CreateAdmin(ctx context.Context, in RegisterInput) (*models.User, error) {
	return s.create(ctx, in, models.RoleAdmin)
}

func (s *AccountService) create(ctx context.Context, in RegisterInput, role models.Role) (*models.User, error) {
	in.normalize()
	if err := s.check(ctx, in, in.Email); err != nil {
		return nil, err
	}
	return s.insert(ctx, in, role, nil)
}

// CreateDoctor stores the avatar before the account; a failed upload leaves
// nothing behind and a failed insert removes the uploaded object.
func (s *AccountService) CreateDoctor(ctx context.Context, in DoctorInput, avatar *Upload) (*models.User, error) {
	if avatar == nil || avatar.File == nil {
		return nil, apperr.Validation("Doctor avatar is required!")
	}
	contentType, err := sniffImage(avatar.File)
	if err != nil {
		return nil, err
	}

	in.normalize()
	in.DoctorDepartment = strings.TrimSpace(in.DoctorDepartment)
	if err := s.check(ctx, in, in.Email); err != nil {
		return nil, err
	}

	uploaded, err := s.avatars.Upload(ctx, contentType, avatar.File, avatar.Size)
	if err != nil {
		s.log.WithError(err).Error("Avatar upload failed")
		return nil, apperr.UploadFailure(err)
	}

	doctor, err := s.insert(ctx, in.RegisterInput, models.RoleDoctor, func(u *models.User) {
		u.DoctorDepartment = in.DoctorDepartment
		u.DocAvatar = uploaded
	})
	if err != nil {
		if rmErr := s.avatars.Remove(ctx, uploaded.PublicID); rmErr != nil {
			s.log.WithError(rmErr).WithField("object", uploaded.PublicID).Warn("Could not remove orphaned avatar")
		}
		return nil, err
	}
	return doctor, nil
}

// check validates a normalized input and rejects a taken email.
func (s *AccountService) check(ctx context.Context, in any, email string) error {
	if err := validation.Struct(in); err != nil {
		return apperr.From(err)
	}
	return s.ensureEmailFree(ctx, email)
}

func (s *AccountService) insert(ctx context.Context, in RegisterInput, role models.Role, extra func(*models.User)) (*models.User, error) {
	dob, err := validation.ParseDate(in.DOB)
	if err != nil {
		return nil, apperr.Validation("dob must be a valid date!")
	}
	hash, err := s.hasher.HashPassword(in.Password)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("hash password: %w", err))
	}

	user := &models.User{
		ID:        primitive.NewObjectID(),
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Phone:     in.Phone,
		NIC:       in.NIC,
		DOB:       dob,
		Gender:    models.Gender(in.Gender),
		Password:  hash,
		Role:      role,
	}
	if extra != nil {
		extra(user)
	}

	// The unique index still catches a concurrent signup with the same email.
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperr.From(err)
	}
	user.Password = ""

	s.log.WithFields(logrus.Fields{"user_id": user.ID.Hex(), "role": role}).Info("Account created")
	return user, nil
}

func (s *AccountService) ensureEmailFree(ctx context.Context, email string) error {
	exists, err := s.users.EmailExists(ctx, email)
	if err != nil {
		return apperr.From(err)
	}
	if exists {
		return apperr.Conflict("User already registered!")
	}
	return nil
}

// Login checks the claimed role before the password, so a wrong role is
// reported as RoleMismatch whatever password was supplied.
func (s *AccountService) Login(ctx context.Context, in LoginInput) (*models.User, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := validation.Struct(in); err != nil {
		return nil, apperr.From(err)
	}
	role, err := models.ParseRole(in.Role)
	if err != nil {
		return nil, apperr.Validation("role must be one of: Patient Doctor Admin")
	}

	user, err := s.users.FindByEmailWithPassword(ctx, in.Email)
	if errors.Is(err, store.ErrNotFound) {
		s.metrics.Auth("login", "invalid_credentials")
		return nil, apperr.InvalidCredentials()
	}
	if err != nil {
		return nil, apperr.From(err)
	}

	if user.Role != role {
		s.metrics.Auth("login", "role_mismatch")
		s.log.WithField("user_id", user.ID.Hex()).Warn("Login with mismatched role")
		return nil, apperr.RoleMismatch()
	}
	if !s.hasher.CheckPasswordHash(in.Password, user.Password) {
		s.metrics.Auth("login", "invalid_credentials")
		return nil, apperr.InvalidCredentials()
	}

	s.metrics.Auth("login", "ok")
	user.Password = ""
	return user, nil
}

func (s *AccountService) ListDoctors(ctx context.Context, page, limit int64) (*DoctorPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	doctors, total, err := s.users.ListByRole(ctx, models.RoleDoctor, (page-1)*limit, limit)
	if err != nil {
		return nil, apperr.From(err)
	}
	return &DoctorPage{
		Doctors:    doctors,
		Page:       page,
		TotalPages: int64(math.Ceil(float64(total) / float64(limit))),
		Total:      total,
	}, nil
}

func (s *AccountService) UpdateDoctor(ctx context.Context, idHex string, in DoctorUpdateInput) (*models.User, error) {
	id, err := parseID(idHex)
	if err != nil {
		return nil, err
	}
	trim(in.FirstName, in.LastName, in.Phone, in.DoctorDepartment)
	if in.Email != nil {
		*in.Email = strings.ToLower(strings.TrimSpace(*in.Email))
	}
	if err := validation.Struct(in); err != nil {
		return nil, apperr.From(err)
	}

	update := models.DoctorUpdate{
		FirstName:        in.FirstName,
		LastName:         in.LastName,
		Email:            in.Email,
		Phone:            in.Phone,
		DoctorDepartment: in.DoctorDepartment,
	}
	if update.Empty() {
		return nil, apperr.Validation("No update fields provided")
	}

	if in.Email != nil {
		owner, err := s.users.EmailOwner(ctx, *in.Email)
		switch {
		case err == nil && owner != id:
			return nil, apperr.Conflict("Email already in use!")
		case err != nil && !errors.Is(err, store.ErrNotFound):
			return nil, apperr.From(err)
		}
	}

	doctor, err := s.users.UpdateDoctor(ctx, id, update)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound("Doctor not found!")
	}
	if err != nil {
		return nil, apperr.From(err)
	}
	return doctor, nil
}

// DeleteDoctor removes the account. Appointments keep their doctor snapshot.
func (s *AccountService) DeleteDoctor(ctx context.Context, idHex string) error {
	id, err := parseID(idHex)
	if err != nil {
		return err
	}

	doctor, err := s.users.FindByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) || (err == nil && doctor.Role != models.RoleDoctor) {
		return apperr.NotFound("Doctor not found!")
	}
	if err != nil {
		return apperr.From(err)
	}

	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperr.NotFound("Doctor not found!")
		}
		return apperr.From(err)
	}

	if doctor.DocAvatar != nil {
		if err := s.avatars.Remove(ctx, doctor.DocAvatar.PublicID); err != nil {
			s.log.WithError(err).WithField("object", doctor.DocAvatar.PublicID).Warn("Could not remove doctor avatar")
		}
	}
	return nil
}

// EnsureAdmin creates an admin from in unless one already exists.
func (s *AccountService) EnsureAdmin(ctx context.Context, in RegisterInput) (bool, error) {
	exists, err := s.users.HasRole(ctx, models.RoleAdmin)
	if err != nil {
		return false, apperr.From(err)
	}
	if exists {
		return false, nil
	}
	if _, err := s.CreateAdmin(ctx, in); err != nil {
		return false, err
	}
	return true, nil
}

func (s *AccountService) recordAuth(action string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = strings.ToLower(string(apperr.From(err).Kind))
	}
	s.metrics.Auth(action, outcome)
}

func sniffImage(r io.ReadSeeker) (string, error) {
	mtype, err := mimetype.DetectReader(r)
	if err != nil {
		return "", apperr.Validation("Could not read avatar file!")
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return "", apperr.Internal(fmt.Errorf("rewind avatar: %w", err))
	}
	for _, allowed := range AllowedAvatarTypes {
		if mtype.Is(allowed) {
			return allowed, nil
		}
	}
	return "", apperr.Validation("File format not supported!")
}

func parseID(s string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(s)
	if err != nil {
		return primitive.NilObjectID, apperr.From(err)
	}
	return id, nil
}

func trim(fields ...*string) {
	for _, f := range fields {
		if f != nil {
			*f = strings.TrimSpace(*f)
		}
	}
}
