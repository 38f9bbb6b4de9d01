package user

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tran-hoang-nhan/phone-shop/internal/servererrors"
)

type fakeUserStore struct {
	users map[primitive.ObjectID]*User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[primitive.ObjectID]*User{}}
}

func (fs *fakeUserStore) createOne(_ context.Context, newUser *User) error {
	for _, u := range fs.users {
		if u.Email == newUser.Email {
			return servererrors.ErrEmailAlreadyUsed
		}
	}

	newUser.ID = primitive.NewObjectID()
	newUser.CreatedAt = time.Now()
	newUser.UpdatedAt = newUser.CreatedAt
	fs.users[newUser.ID] = newUser
	return nil
}

func (fs *fakeUserStore) findByID(_ context.Context, userID primitive.ObjectID) (*User, error) {
	u, ok := fs.users[userID]
	if !ok {
		return nil, servererrors.ErrUserNotFound
	}
	return u, nil
}

func (fs *fakeUserStore) findByEmail(_ context.Context, email string) (*User, error) {
	for _, u := range fs.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, servererrors.ErrUserNotFound
}

func (fs *fakeUserStore) findByResetToken(_ context.Context, hashedToken string) (*User, error) {
	for _, u := range fs.users {
		if u.ResetPasswordToken == hashedToken &&
			u.ResetPasswordExpiry != nil &&
			u.ResetPasswordExpiry.After(time.Now()) {
			return u, nil
		}
	}
	return nil, servererrors.ErrUserNotFound
}

func (fs *fakeUserStore) updateOne(_ context.Context, userID primitive.ObjectID, fields bson.M) (*User, error) {
	u, ok := fs.users[userID]
	if !ok {
		return nil, servererrors.ErrUserNotFound
	}

	for key, value := range fields {
		switch key {
		case "name":
			u.Name = value.(string)
		case "email":
			u.Email = value.(string)
		case "avatar":
			u.Avatar = value.(string)
		case "password":
			u.Password = value.(string)
		case "resetPasswordToken":
			u.ResetPasswordToken = value.(string)
		case "resetPasswordExpiry":
			t := value.(time.Time)
			u.ResetPasswordExpiry = &t
		case "updatedAt":
			u.UpdatedAt = value.(time.Time)
		}
	}

	return u, nil
}

func (fs *fakeUserStore) clearResetToken(_ context.Context, userID primitive.ObjectID) error {
	u, ok := fs.users[userID]
	if !ok {
		return servererrors.ErrUserNotFound
	}
	u.ResetPasswordToken = ""
	u.ResetPasswordExpiry = nil
	return nil
}

type fakeSigner struct{}

func (fakeSigner) SignAccessToken(userID, role string) (string, error) {
	return "token-" + userID + "-" + role, nil
}

func newUserService() (*Service, *fakeUserStore) {
	fs := newFakeUserStore()
	return NewService(fs, fakeSigner{}), fs
}

func TestService_RegisterAndLogin(t *testing.T) {
	svc, _ := newUserService()

	registered, err := svc.register(context.Background(), &RegisterRequest{
		Name:     "Nhan Tran",
		Email:    "Nhan@Example.Com",
		Password: "secret123",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, registered.Token)
	assert.Equal(t, RoleUser, registered.User.Role)
	assert.Equal(t, "nhan@example.com", registered.User.Email)
	assert.NotEqual(t, "secret123", registered.User.Password)

	loggedIn, err := svc.login(context.Background(), &LoginRequest{
		Email:    "nhan@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, loggedIn.User.ID)
}

func TestService_Register_DuplicateEmail(t *testing.T) {
	svc, _ := newUserService()

	_, err := svc.register(context.Background(), &RegisterRequest{
		Name:     "first",
		Email:    "dup@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)

	_, err = svc.register(context.Background(), &RegisterRequest{
		Name:     "second",
		Email:    "dup@example.com",
		Password: "secret123",
	})
	assert.ErrorIs(t, err, servererrors.ErrEmailAlreadyUsed)
}

func TestService_Login_BadCredentials(t *testing.T) {
	svc, _ := newUserService()

	_, err := svc.register(context.Background(), &RegisterRequest{
		Name:     "Nhan Tran",
		Email:    "nhan@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)

	// wrong password and unknown email answer identically
	_, err = svc.login(context.Background(), &LoginRequest{
		Email:    "nhan@example.com",
		Password: "wrong",
	})
	assert.ErrorIs(t, err, servererrors.ErrInvalidCredentials)

	_, err = svc.login(context.Background(), &LoginRequest{
		Email:    "nobody@example.com",
		Password: "secret123",
	})
	assert.ErrorIs(t, err, servererrors.ErrInvalidCredentials)
}

func TestService_UpdatePassword(t *testing.T) {
	svc, _ := newUserService()

	registered, err := svc.register(context.Background(), &RegisterRequest{
		Name:     "Nhan Tran",
		Email:    "nhan@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)

	userID := registered.User.ID.Hex()

	_, err = svc.updatePassword(context.Background(), userID, &UpdatePasswordRequest{
		CurrentPassword: "wrong",
		NewPassword:     "newsecret",
	})
	assert.ErrorIs(t, err, servererrors.ErrInvalidCredentials)

	_, err = svc.updatePassword(context.Background(), userID, &UpdatePasswordRequest{
		CurrentPassword: "secret123",
		NewPassword:     "newsecret",
	})
	require.NoError(t, err)

	_, err = svc.login(context.Background(), &LoginRequest{
		Email:    "nhan@example.com",
		Password: "newsecret",
	})
	assert.NoError(t, err)
}

func TestService_PasswordResetFlow(t *testing.T) {
	service, store := newUserService()

	registered, err := service.register(context.Background(), &RegisterRequest{
		Name:     "Nhan Tran",
		Email:    "nhan@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)

	resetToken, err := service.forgotPassword(context.Background(), "nhan@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, resetToken)

	// only the hash is stored
	stored := store.users[registered.User.ID]
	assert.NotEqual(t, resetToken, stored.ResetPasswordToken)
	assert.NotEmpty(t, stored.ResetPasswordToken)

	_, err = service.resetPassword(context.Background(), "bogus-token", "newsecret")
	assert.ErrorIs(t, err, servererrors.ErrInvalidResetToken)

	reset, err := service.resetPassword(context.Background(), resetToken, "newsecret")
	require.NoError(t, err)
	assert.NotEmpty(t, reset.Token)

	_, err = service.login(context.Background(), &LoginRequest{
		Email:    "nhan@example.com",
		Password: "newsecret",
	})
	assert.NoError(t, err)

	// token is single use
	_, err = service.resetPassword(context.Background(), resetToken, "again")
	assert.ErrorIs(t, err, servererrors.ErrInvalidResetToken)
}

func TestService_ResetPassword_ExpiredToken(t *testing.T) {
	service, store := newUserService()

	registered, err := service.register(context.Background(), &RegisterRequest{
		Name:     "Nhan Tran",
		Email:    "nhan@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)

	resetToken, err := service.forgotPassword(context.Background(), "nhan@example.com")
	require.NoError(t, err)

	expired := time.Now().Add(-time.Minute)
	store.users[registered.User.ID].ResetPasswordExpiry = &expired

	_, err = service.resetPassword(context.Background(), resetToken, "newsecret")
	assert.ErrorIs(t, err, servererrors.ErrInvalidResetToken)
}

func TestService_EnsureAdmin_Idempotent(t *testing.T) {
	service, store := newUserService()

	first, err := service.EnsureAdmin(
		context.Background(),
		"admin",
		"admin@phoneshop.local",
		"changeme",
	)
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, first.Role)

	second, err := service.EnsureAdmin(
		context.Background(),
		"admin",
		"admin@phoneshop.local",
		"changeme",
	)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, store.users, 1)
}
