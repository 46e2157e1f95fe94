package models

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role is the fixed set of account kinds. It is set at creation and never changed.
type Role string

const (
	RolePatient Role = "Patient"
	RoleDoctor  Role = "Doctor"
	RoleAdmin   Role = "Admin"
)

// ParseRole accepts the exact role names used on the wire.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RolePatient, RoleDoctor, RoleAdmin:
		return Role(s), nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// CookieName is the session cookie each role logs in with. Separate names let
// an admin and a patient keep independent sessions in the same browser.
func (r Role) CookieName() string {
	switch r {
	case RoleAdmin:
		return "adminToken"
	case RoleDoctor:
		return "doctorToken"
	case RolePatient:
		return "patientToken"
	}
	return ""
}

type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
)

// Avatar points at a doctor's picture in object storage.
type Avatar struct {
	PublicID string `bson:"public_id" json:"public_id"`
	URL      string `bson:"url" json:"url"`
}

type User struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FirstName        string             `bson:"firstName" json:"firstName"`
	LastName         string             `bson:"lastName" json:"lastName"`
	Email            string             `bson:"email" json:"email"`
	Phone            string             `bson:"phone" json:"phone"`
	NIC              string             `bson:"nic" json:"nic"`
	DOB              time.Time          `bson:"dob" json:"dob"`
	Gender           Gender             `bson:"gender" json:"gender"`
	Password         string             `bson:"password,omitempty" json:"-"` // bcrypt hash, never sent
	Role             Role               `bson:"role" json:"role"`
	DoctorDepartment string             `bson:"doctorDepartment,omitempty" json:"doctorDepartment,omitempty"`
	DocAvatar        *Avatar            `bson:"docAvatar,omitempty" json:"docAvatar,omitempty"`
	CreatedAt        time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// UserRef is the slice of a user embedded into appointment listings.
type UserRef struct {
	ID               primitive.ObjectID `bson:"_id" json:"id"`
	FirstName        string             `bson:"firstName" json:"firstName"`
	LastName         string             `bson:"lastName" json:"lastName"`
	Email            string             `bson:"email" json:"email"`
	Phone            string             `bson:"phone" json:"phone"`
	DoctorDepartment string             `bson:"doctorDepartment,omitempty" json:"doctorDepartment,omitempty"`
}

func (u *User) Ref() *UserRef {
	return &UserRef{
		ID:               u.ID,
		FirstName:        u.FirstName,
		LastName:         u.LastName,
		Email:            u.Email,
		Phone:            u.Phone,
		DoctorDepartment: u.DoctorDepartment,
	}
}

// DoctorUpdate lists the profile fields an admin may edit. Nil means unchanged.
type DoctorUpdate struct {
	FirstName        *string
	LastName         *string
	Email            *string
	Phone            *string
	DoctorDepartment *string
}

func (u DoctorUpdate) Empty() bool {
	return u.FirstName == nil && u.LastName == nil && u.Email == nil && u.Phone == nil && u.DoctorDepartment == nil
}
