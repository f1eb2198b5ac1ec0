package repository

import (
	"context"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"civicalert/internal/domain/entity"
	"civicalert/internal/domain/repository"
	"civicalert/pkg/errors"
)

const usersCollection = "users"

type firestoreUserRepository struct {
	client *firestore.Client
}

func NewFirestoreUserRepository(client *firestore.Client) repository.UserRepository {
	return &firestoreUserRepository{
		client: client,
	}
}

func (r *firestoreUserRepository) Create(ctx context.Context, user *entity.UserProfile) error {
	_, err := r.client.Collection(usersCollection).Doc(user.ID).Set(ctx, user)
	return err
}

func (r *firestoreUserRepository) GetByID(ctx context.Context, id string) (*entity.UserProfile, error) {
	doc, err := r.client.Collection(usersCollection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("User", err)
		}
		return nil, err
	}

	return decodeUser(doc)
}

func (r *firestoreUserRepository) GetByEmail(ctx context.Context, email string) (*entity.UserProfile, error) {
	iter := r.client.Collection(usersCollection).Where("email", "==", email).Limit(1).Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done {
		return nil, errors.NotFound("User", nil)
	}
	if err != nil {
		return nil, err
	}

	return decodeUser(doc)
}

func decodeUser(doc *firestore.DocumentSnapshot) (*entity.UserProfile, error) {
	var user entity.UserProfile
	if err := doc.DataTo(&user); err != nil {
		return nil, err
	}
	if user.ID == "" {
		user.ID = doc.Ref.ID
	}
	return &user, nil
}

func (r *firestoreUserRepository) update(ctx context.Context, id string, updates ...firestore.Update) error {
	updates = append(updates, firestore.Update{Path: "updatedAt", Value: firestore.ServerTimestamp})
	_, err := r.client.Collection(usersCollection).Doc(id).Update(ctx, updates)
	if status.Code(err) == codes.NotFound {
		return errors.NotFound("User", err)
	}
	return err
}

func (r *firestoreUserRepository) UpdateProfile(ctx context.Context, id string, displayName string) error {
	return r.update(ctx, id, firestore.Update{Path: "displayName", Value: displayName})
}

func (r *firestoreUserRepository) UpdateHomeCity(ctx context.Context, id string, city entity.HomeCity) error {
	return r.update(ctx, id, firestore.Update{Path: "homeCity", Value: city})
}

func (r *firestoreUserRepository) UpdatePhotoURL(ctx context.Context, id string, url string) error {
	return r.update(ctx, id, firestore.Update{Path: "photoUrl", Value: url})
}

func (r *firestoreUserRepository) UpdateRole(ctx context.Context, id string, role entity.Role) error {
	return r.update(ctx, id, firestore.Update{Path: "role", Value: string(role)})
}
