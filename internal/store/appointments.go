package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/harentsoaR/medicore-api/internal/models"
)

type MongoAppointmentStore struct {
	coll *mongo.Collection
}

func (s *MongoAppointmentStore) Create(ctx context.Context, apt *models.Appointment) error {
	if apt.ID.IsZero() {
		apt.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	apt.CreatedAt, apt.UpdatedAt = now, now

	if _, err := s.coll.InsertOne(ctx, apt); err != nil {
		return fmt.Errorf("insert appointment: %w", err)
	}
	return nil
}

func (s *MongoAppointmentStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Appointment, error) {
	var apt models.Appointment
	if err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&apt); err != nil {
		return nil, notFound(err)
	}
	return &apt, nil
}

func (s *MongoAppointmentStore) List(ctx context.Context, filter AppointmentFilter) ([]models.Appointment, error) {
	query := bson.M{}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	date := bson.M{}
	if !filter.From.IsZero() {
		date["$gte"] = filter.From
	}
	if !filter.To.IsZero() {
		date["$lte"] = filter.EndOfDay()
	}
	if len(date) > 0 {
		query["appointment_date"] = date
	}
	return s.find(ctx, query, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
}

func (s *MongoAppointmentStore) ListByPatient(ctx context.Context, patientID primitive.ObjectID) ([]models.Appointment, error) {
	// Sort by appointment date to "group" by day
	opts := options.Find().SetSort(bson.D{{Key: "appointment_date", Value: 1}})
	return s.find(ctx, bson.M{"patientId": patientID}, opts)
}

func (s *MongoAppointmentStore) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Appointment, error) {
	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find appointments: %w", err)
	}
	defer cursor.Close(ctx)

	appointments := make([]models.Appointment, 0)
	if err := cursor.All(ctx, &appointments); err != nil {
		return nil, fmt.Errorf("decode appointments: %w", err)
	}
	return appointments, nil
}

func (s *MongoAppointmentStore) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.AppointmentStatus) (*models.Appointment, error) {
	update := bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now().UTC()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var apt models.Appointment
	if err := s.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&apt); err != nil {
		return nil, notFound(err)
	}
	return &apt, nil
}

func (s *MongoAppointmentStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete appointment: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
