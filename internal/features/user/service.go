package user

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/tran-hoang-nhan/phone-shop/internal/servererrors"
)

const resetTokenTTL = 10 * time.Minute

type storer interface {
	createOne(ctx context.Context, newUser *User) error
	findByID(ctx context.Context, userID primitive.ObjectID) (*User, error)
	findByEmail(ctx context.Context, email string) (*User, error)
	findByResetToken(ctx context.Context, hashedToken string) (*User, error)
	updateOne(ctx context.Context, userID primitive.ObjectID, fields bson.M) (*User, error)
	clearResetToken(ctx context.Context, userID primitive.ObjectID) error
}

type tokenSigner interface {
	SignAccessToken(userID, role string) (string, error)
}

type Service struct {
	store        storer
	tokenService tokenSigner
}

func NewService(store storer, tokenService tokenSigner) *Service {
	return &Service{
		store:        store,
		tokenService: tokenService,
	}
}

func (s *Service) register(ctx context.Context, newUser *RegisterRequest) (*AuthResponse, error) {
	hashed, err := bcrypt.GenerateFromPassword(
		[]byte(newUser.Password),
		bcrypt.DefaultCost,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	toInsert := &User{
		Name:     strings.TrimSpace(newUser.Name),
		Email:    normalizeEmail(newUser.Email),
		Password: string(hashed),
		Role:     RoleUser,
	}

	if err := s.store.createOne(ctx, toInsert); err != nil {
		return nil, err
	}

	return s.authResponse(toInsert)
}

// login answers the same invalid-credentials error for an unknown email and
// a wrong password, so the endpoint does not leak which emails exist.
func (s *Service) login(ctx context.Context, credentials *LoginRequest) (*AuthResponse, error) {
	foundUser, err := s.store.findByEmail(ctx, normalizeEmail(credentials.Email))
	if err != nil {
		if errors.Is(err, servererrors.ErrUserNotFound) {
			return nil, servererrors.ErrInvalidCredentials
		}

		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword(
		[]byte(foundUser.Password),
		[]byte(credentials.Password),
	); err != nil {
		return nil, servererrors.ErrInvalidCredentials
	}

	return s.authResponse(foundUser)
}

func (s *Service) getMe(ctx context.Context, userID string) (*User, error) {
	uID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, servererrors.ErrUserNotFound
	}

	return s.store.findByID(ctx, uID)
}

func (s *Service) updateDetails(ctx context.Context, userID string, updates *UpdateDetailsRequest) (*User, error) {
	uID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, servererrors.ErrUserNotFound
	}

	fields := bson.M{}

	if updates.Name != nil {
		fields["name"] = strings.TrimSpace(*updates.Name)
	}
	if updates.Email != nil {
		fields["email"] = normalizeEmail(*updates.Email)
	}
	if updates.Avatar != nil {
		fields["avatar"] = *updates.Avatar
	}

	return s.store.updateOne(ctx, uID, fields)
}

// updatePassword requires the current password and issues a fresh token on
// success.
func (s *Service) updatePassword(ctx context.Context, userID string, passwords *UpdatePasswordRequest) (*AuthResponse, error) {
	uID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, servererrors.ErrUserNotFound
	}

	foundUser, err := s.store.findByID(ctx, uID)
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword(
		[]byte(foundUser.Password),
		[]byte(passwords.CurrentPassword),
	); err != nil {
		return nil, servererrors.ErrInvalidCredentials
	}

	hashed, err := bcrypt.GenerateFromPassword(
		[]byte(passwords.NewPassword),
		bcrypt.DefaultCost,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	updatedUser, err := s.store.updateOne(ctx, uID, bson.M{
		"password": string(hashed),
	})
	if err != nil {
		return nil, err
	}

	return s.authResponse(updatedUser)
}

// forgotPassword stores the sha256 of a fresh random token with a short
// expiry and hands the plain token back to the caller. The handler logs the
// reset URL in place of sending an email.
func (s *Service) forgotPassword(ctx context.Context, email string) (string, error) {
	foundUser, err := s.store.findByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return "", err
	}

	raw := make([]byte, 20)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to generate reset token: %w", err)
	}

	resetToken := hex.EncodeToString(raw)
	expiry := time.Now().Add(resetTokenTTL)

	_, err = s.store.updateOne(ctx, foundUser.ID, bson.M{
		"resetPasswordToken":  hashResetToken(resetToken),
		"resetPasswordExpiry": expiry,
	})
	if err != nil {
		return "", err
	}

	return resetToken, nil
}

func (s *Service) resetPassword(ctx context.Context, resetToken, newPassword string) (*AuthResponse, error) {
	foundUser, err := s.store.findByResetToken(ctx, hashResetToken(resetToken))
	if err != nil {
		if errors.Is(err, servererrors.ErrUserNotFound) {
			return nil, servererrors.ErrInvalidResetToken
		}

		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword(
		[]byte(newPassword),
		bcrypt.DefaultCost,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	updatedUser, err := s.store.updateOne(ctx, foundUser.ID, bson.M{
		"password": string(hashed),
	})
	if err != nil {
		return nil, err
	}

	if err := s.store.clearResetToken(ctx, foundUser.ID); err != nil {
		return nil, err
	}

	return s.authResponse(updatedUser)
}

// EnsureAdmin creates the admin account when it does not exist yet. The seed
// command calls this with the configured admin credentials.
func (s *Service) EnsureAdmin(ctx context.Context, name, email, password string) (*User, error) {
	existing, err := s.store.findByEmail(ctx, normalizeEmail(email))
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, servererrors.ErrUserNotFound) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword(
		[]byte(password),
		bcrypt.DefaultCost,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	admin := &User{
		Name:     name,
		Email:    normalizeEmail(email),
		Password: string(hashed),
		Role:     RoleAdmin,
	}

	if err := s.store.createOne(ctx, admin); err != nil {
		return nil, err
	}

	return admin, nil
}

func (s *Service) authResponse(forUser *User) (*AuthResponse, error) {
	token, err := s.tokenService.SignAccessToken(forUser.ID.Hex(), forUser.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	return &AuthResponse{
		Token: token,
		User:  forUser,
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func hashResetToken(resetToken string) string {
	sum := sha256.Sum256([]byte(resetToken))
	return hex.EncodeToString(sum[:])
}
