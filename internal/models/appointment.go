package models

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AppointmentStatus string

const (
	StatusPending  AppointmentStatus = "Pending"
	StatusAccepted AppointmentStatus = "Accepted"
	StatusRejected AppointmentStatus = "Rejected"
)

func ParseAppointmentStatus(s string) (AppointmentStatus, error) {
	switch AppointmentStatus(s) {
	case StatusPending, StatusAccepted, StatusRejected:
		return AppointmentStatus(s), nil
	}
	return "", fmt.Errorf("unknown appointment status %q", s)
}

// DoctorName is copied onto the appointment when it is booked and is not
// updated when the doctor's profile changes.
type DoctorName struct {
	FirstName string `bson:"firstName" json:"firstName"`
	LastName  string `bson:"lastName" json:"lastName"`
}

type Appointment struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FirstName       string             `bson:"firstName" json:"firstName"`
	LastName        string             `bson:"lastName" json:"lastName"`
	Email           string             `bson:"email" json:"email"`
	Phone           string             `bson:"phone" json:"phone"`
	NIC             string             `bson:"nic" json:"nic"`
	DOB             time.Time          `bson:"dob" json:"dob"`
	Gender          Gender             `bson:"gender" json:"gender"`
	AppointmentDate time.Time          `bson:"appointment_date" json:"appointment_date"`
	Department      string             `bson:"department" json:"department"`
	Doctor          DoctorName         `bson:"doctor" json:"doctor"`
	HasVisited      bool               `bson:"hasVisited" json:"hasVisited"`
	Address         string             `bson:"address" json:"address"`
	DoctorID        primitive.ObjectID `bson:"doctorId" json:"doctorId"`
	PatientID       primitive.ObjectID `bson:"patientId" json:"patientId"`
	Status          AppointmentStatus  `bson:"status" json:"status"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// AppointmentView is an appointment with its user references expanded for
// display. A reference to a user that no longer exists renders as null.
type AppointmentView struct {
	ID              primitive.ObjectID `json:"id"`
	FirstName       string             `json:"firstName"`
	LastName        string             `json:"lastName"`
	Email           string             `json:"email"`
	Phone           string             `json:"phone"`
	NIC             string             `json:"nic"`
	DOB             time.Time          `json:"dob"`
	Gender          Gender             `json:"gender"`
	AppointmentDate time.Time          `json:"appointment_date"`
	Department      string             `json:"department"`
	Doctor          DoctorName         `json:"doctor"`
	HasVisited      bool               `json:"hasVisited"`
	Address         string             `json:"address"`
	DoctorID        *UserRef           `json:"doctorId"`
	PatientID       *UserRef           `json:"patientId"`
	Status          AppointmentStatus  `json:"status"`
	CreatedAt       time.Time          `json:"createdAt"`
	UpdatedAt       time.Time          `json:"updatedAt"`
}

func (a *Appointment) View(doctor, patient *UserRef) AppointmentView {
	return AppointmentView{
		ID:              a.ID,
		FirstName:       a.FirstName,
		LastName:        a.LastName,
		Email:           a.Email,
		Phone:           a.Phone,
		NIC:             a.NIC,
		DOB:             a.DOB,
		Gender:          a.Gender,
		AppointmentDate: a.AppointmentDate,
		Department:      a.Department,
		Doctor:          a.Doctor,
		HasVisited:      a.HasVisited,
		Address:         a.Address,
		DoctorID:        doctor,
		PatientID:       patient,
		Status:          a.Status,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
}
