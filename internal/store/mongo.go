package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	usersCollection        = "users"
	appointmentsCollection = "appointments"
	messagesCollection     = "messages"
)

// DB owns the client handle. It is created once at startup and passed to the
// collection stores.
type DB struct {
	Client   *mongo.Client
	Database *mongo.Database
}

// Connect dials and pings the server. Failures are returned to the caller.
func Connect(ctx context.Context, uri, database string) (*DB, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}
	return &DB{Client: client, Database: client.Database(database)}, nil
}

func (db *DB) Ping(ctx context.Context) error {
	return db.Client.Ping(ctx, readpref.Primary())
}

func (db *DB) Close(ctx context.Context) error {
	return db.Client.Disconnect(ctx)
}

// EnsureIndexes creates the unique email index and the appointment lookup
// indexes. It is idempotent.
func (db *DB) EnsureIndexes(ctx context.Context) error {
	_, err := db.Database.Collection(usersCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "role", Value: 1}, {Key: "doctorDepartment", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("create user indexes: %w", err)
	}

	_, err = db.Database.Collection(appointmentsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "doctorId", Value: 1}}},
		{Keys: bson.D{{Key: "patientId", Value: 1}, {Key: "appointment_date", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "appointment_date", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("create appointment indexes: %w", err)
	}
	return nil
}

func (db *DB) Users() *MongoUserStore {
	return &MongoUserStore{coll: db.Database.Collection(usersCollection)}
}

func (db *DB) Appointments() *MongoAppointmentStore {
	return &MongoAppointmentStore{coll: db.Database.Collection(appointmentsCollection)}
}

func (db *DB) Messages() *MongoMessageStore {
	return &MongoMessageStore{coll: db.Database.Collection(messagesCollection)}
}

func notFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return err
}
