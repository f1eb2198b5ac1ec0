package repository

import (
	"context"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"civicalert/internal/domain/entity"
	"civicalert/internal/domain/repository"
	"civicalert/pkg/errors"
)

const invitesCollection = "invites"

type firestoreInviteRepository struct {
	client *firestore.Client
}

func NewFirestoreInviteRepository(client *firestore.Client) repository.InviteRepository {
	return &firestoreInviteRepository{
		client: client,
	}
}

func (r *firestoreInviteRepository) Create(ctx context.Context, invite *entity.Invite) error {
	ref, _, err := r.client.Collection(invitesCollection).Add(ctx, invite)
	if err != nil {
		return err
	}
	invite.ID = ref.ID
	return nil
}

// ConsumeAndGrant deletes the invite matching code and writes role to the
// user's profile in one transaction, so a code can be used once.
func (r *firestoreInviteRepository) ConsumeAndGrant(ctx context.Context, code, uid string, role entity.Role) error {
	userRef := r.client.Collection(usersCollection).Doc(uid)
	query := r.client.Collection(invitesCollection).Where("code", "==", code).Limit(1)

	return r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		docs, err := tx.Documents(query).GetAll()
		if err != nil {
			return err
		}
		if len(docs) == 0 {
			return errors.NotFound("Invite", nil)
		}

		if _, err := tx.Get(userRef); err != nil {
			if status.Code(err) == codes.NotFound {
				return errors.NotFound("User", err)
			}
			return err
		}

		if err := tx.Delete(docs[0].Ref); err != nil {
			return err
		}
		return tx.Update(userRef, []firestore.Update{
			{Path: "role", Value: string(role)},
			{Path: "updatedAt", Value: firestore.ServerTimestamp},
		})
	})
}
