package firebase

import (
	"context"
	"strings"

	"firebase.google.com/go/v4/auth"

	"civicalert/internal/domain/entity"
	"civicalert/pkg/errors"
)

// roleClaim is the custom claim carrying the user's role.
const roleClaim = "role"

type FirebaseAuthClient struct {
	client *auth.Client
}

func NewFirebaseAuthClient(client *auth.Client) *FirebaseAuthClient {
	return &FirebaseAuthClient{
		client: client,
	}
}

func (f *FirebaseAuthClient) CreateUser(ctx context.Context, email, password, displayName string) (string, error) {
	params := (&auth.UserToCreate{}).
		Email(email).
		Password(password).
		DisplayName(displayName)

	user, err := f.client.CreateUser(ctx, params)
	if err != nil {
		return "", mapAuthError(err)
	}

	return user.UID, nil
}

// mapAuthError turns SDK failures into errors with user-facing text.
func mapAuthError(err error) error {
	switch {
	case auth.IsEmailAlreadyExists(err):
		return errors.Auth(errors.CodeEmailInUse, err)
	case strings.Contains(err.Error(), "password must be"):
		return errors.Auth(errors.CodeWeakPassword, err)
	case strings.Contains(err.Error(), "malformed email"):
		return errors.Auth(errors.CodeInvalidEmail, err)
	default:
		return errors.Auth("", err)
	}
}

// VerifyToken checks an ID token and reads the role claim. Tokens without
// the claim belong to citizens.
func (f *FirebaseAuthClient) VerifyToken(ctx context.Context, idToken string) (*entity.Identity, error) {
	token, err := f.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, err
	}

	identity := &entity.Identity{UID: token.UID, Role: entity.RoleCitizen}
	if role, ok := token.Claims[roleClaim].(string); ok {
		identity.Role = entity.ParseRole(role)
	}
	if email, ok := token.Claims["email"].(string); ok {
		identity.Email = email
	}
	return identity, nil
}

func (f *FirebaseAuthClient) SetRoleClaim(ctx context.Context, uid string, role entity.Role) error {
	return f.client.SetCustomUserClaims(ctx, uid, map[string]interface{}{roleClaim: string(role)})
}

func (f *FirebaseAuthClient) GenerateToken(ctx context.Context, uid string) (string, error) {
	token, err := f.client.CustomToken(ctx, uid)
	if err != nil {
		return "", err
	}

	return token, nil
}

// TestConnection makes a cheap authenticated call. A missing user still
// proves the credentials work.
func (f *FirebaseAuthClient) TestConnection(ctx context.Context) error {
	_, err := f.client.GetUser(ctx, "health-check-probe")
	if err != nil && !auth.IsUserNotFound(err) {
		return err
	}
	return nil
}
