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

var (
	withoutPassword = bson.M{"password": 0}
	refProjection   = bson.M{"firstName": 1, "lastName": 1, "email": 1, "phone": 1, "doctorDepartment": 1}
)

type MongoUserStore struct {
	coll *mongo.Collection
}

func (s *MongoUserStore) Create(ctx context.Context, user *models.User) error {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	user.CreatedAt, user.UpdatedAt = now, now

	if _, err := s.coll.InsertOne(ctx, user); err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *MongoUserStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	opts := options.FindOne().SetProjection(withoutPassword)
	if err := s.coll.FindOne(ctx, bson.M{"_id": id}, opts).Decode(&user); err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (s *MongoUserStore) FindByEmailWithPassword(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.coll.FindOne(ctx, bson.M{"email": email}).Decode(&user); err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (s *MongoUserStore) EmailExists(ctx context.Context, email string) (bool, error) {
	n, err := s.coll.CountDocuments(ctx, bson.M{"email": email}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("count users by email: %w", err)
	}
	return n > 0, nil
}

func (s *MongoUserStore) EmailOwner(ctx context.Context, email string) (primitive.ObjectID, error) {
	var doc struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	opts := options.FindOne().SetProjection(bson.M{"_id": 1})
	if err := s.coll.FindOne(ctx, bson.M{"email": email}, opts).Decode(&doc); err != nil {
		return primitive.NilObjectID, notFound(err)
	}
	return doc.ID, nil
}

func (s *MongoUserStore) FindDoctor(ctx context.Context, firstName, lastName, department string) (*models.User, error) {
	filter := bson.M{
		"firstName":        firstName,
		"lastName":         lastName,
		"role":             models.RoleDoctor,
		"doctorDepartment": department,
	}
	var doctor models.User
	opts := options.FindOne().SetProjection(withoutPassword)
	if err := s.coll.FindOne(ctx, filter, opts).Decode(&doctor); err != nil {
		return nil, notFound(err)
	}
	return &doctor, nil
}

func (s *MongoUserStore) FindRefs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.UserRef, error) {
	refs := make(map[primitive.ObjectID]*models.UserRef, len(ids))
	if len(ids) == 0 {
		return refs, nil
	}

	cursor, err := s.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, options.Find().SetProjection(refProjection))
	if err != nil {
		return nil, fmt.Errorf("find user refs: %w", err)
	}
	defer cursor.Close(ctx)

	var found []models.UserRef
	if err := cursor.All(ctx, &found); err != nil {
		return nil, fmt.Errorf("decode user refs: %w", err)
	}
	for i := range found {
		refs[found[i].ID] = &found[i]
	}
	return refs, nil
}

func (s *MongoUserStore) ListByRole(ctx context.Context, role models.Role, skip, limit int64) ([]models.User, int64, error) {
	filter := bson.M{"role": role}
	opts := options.Find().
		SetProjection(withoutPassword).
		SetSort(bson.D{{Key: "createdAt", Value: 1}}).
		SetSkip(skip).
		SetLimit(limit)

	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	defer cursor.Close(ctx)

	users := make([]models.User, 0)
	if err := cursor.All(ctx, &users); err != nil {
		return nil, 0, fmt.Errorf("decode users: %w", err)
	}

	total, err := s.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}
	return users, total, nil
}

func (s *MongoUserStore) UpdateDoctor(ctx context.Context, id primitive.ObjectID, update models.DoctorUpdate) (*models.User, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if update.FirstName != nil {
		set["firstName"] = *update.FirstName
	}
	if update.LastName != nil {
		set["lastName"] = *update.LastName
	}
	if update.Email != nil {
		set["email"] = *update.Email
	}
	if update.Phone != nil {
		set["phone"] = *update.Phone
	}
	if update.DoctorDepartment != nil {
		set["doctorDepartment"] = *update.DoctorDepartment
	}

	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(withoutPassword)

	var user models.User
	err := s.coll.FindOneAndUpdate(ctx, bson.M{"_id": id, "role": models.RoleDoctor}, bson.M{"$set": set}, opts).Decode(&user)
	if err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (s *MongoUserStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoUserStore) HasRole(ctx context.Context, role models.Role) (bool, error) {
	n, err := s.coll.CountDocuments(ctx, bson.M{"role": role}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("count users by role: %w", err)
	}
	return n > 0, nil
}
