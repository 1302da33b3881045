// Package service holds the authentication orchestration logic: the decision
// procedure that sequences account gates, primary factors (password or face),
// the optional second factor, and the success side effects for register and
// login.
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/tripmesh/auth-service/internal/auth"
	"github.com/tripmesh/auth-service/internal/face"
	"github.com/tripmesh/auth-service/internal/models"
	"github.com/tripmesh/auth-service/internal/storage"
	"github.com/tripmesh/auth-service/internal/totp"
)

// Session is the response to a successful login or registration: the bearer
// token plus the profile summary the client renders.
type Session struct {
	Token            string   `json:"token"`
	Type             string   `json:"type"`
	ID               int64    `json:"id"`
	Email            string   `json:"email"`
	Username         string   `json:"username"`
	FirstName        string   `json:"firstName"`
	LastName         string   `json:"lastName"`
	Roles            []string `json:"roles"`
	FaceVerified     bool     `json:"faceVerified"`
	TwoFactorEnabled bool     `json:"twoFactorEnabled"`
}

// RegisterInput carries everything needed to provision an account.
type RegisterInput struct {
	Email            string
	Password         string
	FirstName        string
	LastName         string
	Username         string
	DateOfBirth      time.Time
	Gender           string
	FaceEncodingData string
}

// LoginInput carries one login attempt. Exactly one primary factor applies:
// the face path when UseFaceRecognition is set, the password path otherwise.
type LoginInput struct {
	Email              string
	Password           string
	TwoFactorCode      string
	UseFaceRecognition bool
	FaceData           string
}

// TwoFactorEnrollment is the result of enabling 2FA: the raw secret and the
// otpauth:// URI to show the user once.
type TwoFactorEnrollment struct {
	Secret     string
	OtpauthURL string
}

// AuthService composes the user store, credential hashing, the second-factor
// verifier, the face client, and the token manager. It holds no locks and no
// per-request state; concurrent same-account operations serialize on the
// store's atomic single-row writes.
type AuthService struct {
	store     storage.UserStore
	passwords *auth.PasswordHasher
	totp      *totp.Manager
	faces     face.Client
	tokens    *auth.TokenManager
	now       func() time.Time
}

// NewAuthService wires the service from its collaborators.
func NewAuthService(store storage.UserStore, passwords *auth.PasswordHasher, totpManager *totp.Manager, faces face.Client, tokens *auth.TokenManager) *AuthService {
	return &AuthService{
		store:     store,
		passwords: passwords,
		totp:      totpManager,
		faces:     faces,
		tokens:    tokens,
		now:       time.Now,
	}
}

// Register provisions a new account and immediately logs it in, so
// registration and login share a single success path and response shape.
// Email is checked before username so the rejection order is stable.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (Session, error) {
	log.Printf("register attempt email=%s username=%s", in.Email, in.Username)

	if taken, err := s.store.ExistsByEmail(ctx, in.Email); err != nil {
		return Session{}, fmt.Errorf("check email uniqueness: %w", err)
	} else if taken {
		return Session{}, ErrDuplicateEmail
	}
	if taken, err := s.store.ExistsByUsername(ctx, in.Username); err != nil {
		return Session{}, fmt.Errorf("check username uniqueness: %w", err)
	} else if taken {
		return Session{}, ErrDuplicateUsername
	}

	hash, err := s.passwords.Hash(in.Password)
	if err != nil {
		return Session{}, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		Email:            in.Email,
		Username:         in.Username,
		PasswordHash:     hash,
		FirstName:        in.FirstName,
		LastName:         in.LastName,
		DateOfBirth:      in.DateOfBirth,
		Gender:           in.Gender,
		FaceEncodingData: in.FaceEncodingData,
		FaceVerified:     in.FaceEncodingData != "",
		Roles:            models.DefaultRoles(),
		IsActive:         true,
	}

	if _, err := s.store.CreateUser(ctx, user); err != nil {
		// Two registrations can race past the exists checks; the unique
		// constraints are the source of truth.
		switch {
		case errors.Is(err, storage.ErrEmailTaken):
			return Session{}, ErrDuplicateEmail
		case errors.Is(err, storage.ErrUsernameTaken):
			return Session{}, ErrDuplicateUsername
		}
		return Session{}, fmt.Errorf("create user: %w", err)
	}

	log.Printf("user registered email=%s", in.Email)
	return s.Login(ctx, LoginInput{Email: in.Email, Password: in.Password})
}

// Login runs one authentication attempt through the gate sequence: resolve
// account, active/banned check, primary factor, second factor, side effects,
// token. The disabled-account check runs before any credential verification
// so banned users learn nothing about credential correctness.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (Session, error) {
	log.Printf("login attempt email=%s face=%t", in.Email, in.UseFaceRecognition)

	user, err := s.store.FindByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, fmt.Errorf("find user: %w", err)
	}

	if !user.IsActive || user.IsBanned {
		return Session{}, ErrAccountDisabled
	}

	if err := s.verifyPrimaryFactor(ctx, user, in); err != nil {
		log.Printf("login rejected email=%s reason=%v", in.Email, err)
		return Session{}, err
	}

	if err := s.verifySecondFactor(ctx, user, in.TwoFactorCode); err != nil {
		return Session{}, err
	}

	// Touch only the column login owns. Writing back the record read at the
	// top would revert any same-account mutation that landed in between,
	// such as a 2FA enrollment.
	if err := s.store.UpdateLastLogin(ctx, user.ID, s.now()); err != nil {
		return Session{}, fmt.Errorf("update last login: %w", err)
	}

	token, err := s.tokens.Generate(user)
	if err != nil {
		return Session{}, fmt.Errorf("generate token: %w", err)
	}

	log.Printf("login succeeded email=%s", user.Email)
	return newSession(token, user), nil
}

// verifyPrimaryFactor runs exactly one of the two primary branches. Face
// verification fails closed: any service error counts as no match, because an
// unreachable verifier must never grant access.
func (s *AuthService) verifyPrimaryFactor(ctx context.Context, user models.User, in LoginInput) error {
	if in.UseFaceRecognition {
		if in.FaceData == "" || !user.HasFace() {
			return ErrFaceVerificationFailed
		}
		result, err := s.faces.Verify(ctx, user.FaceEncodingData, in.FaceData)
		if err != nil {
			log.Printf("face verification unavailable email=%s err=%v", user.Email, err)
			return ErrFaceVerificationFailed
		}
		if !result.Match {
			return ErrFaceVerificationFailed
		}
		return nil
	}

	if in.Password == "" || !s.passwords.Verify(in.Password, user.PasswordHash) {
		return ErrInvalidCredentials
	}
	return nil
}

// verifySecondFactor gates code-enabled accounts. It runs only after the
// primary factor passed, so a leaked TOTP code alone never grants access.
func (s *AuthService) verifySecondFactor(ctx context.Context, user models.User, code string) error {
	if !user.TwoFactorEnabled {
		return nil
	}
	if code == "" {
		return ErrTwoFactorRequired
	}
	ok, err := s.totp.Verify(ctx, user.ID, user.TwoFactorSecret, code)
	if err != nil {
		log.Printf("two-factor verification error id=%d err=%v", user.ID, err)
		return ErrTwoFactorInvalid
	}
	if !ok {
		return ErrTwoFactorInvalid
	}
	return nil
}

// Enable2FA provisions a fresh secret and turns the flag on. Calling it again
// rotates the secret.
func (s *AuthService) Enable2FA(ctx context.Context, userID int64) (TwoFactorEnrollment, error) {
	user, err := s.findByID(ctx, userID)
	if err != nil {
		return TwoFactorEnrollment{}, err
	}

	secret, uri, err := s.totp.GenerateSecret(user.Email)
	if err != nil {
		return TwoFactorEnrollment{}, fmt.Errorf("generate 2fa secret: %w", err)
	}

	user.TwoFactorSecret = secret
	user.TwoFactorEnabled = true
	if _, err := s.store.UpdateUser(ctx, user); err != nil {
		return TwoFactorEnrollment{}, fmt.Errorf("store 2fa secret: %w", err)
	}

	log.Printf("2fa enabled id=%d", userID)
	return TwoFactorEnrollment{Secret: secret, OtpauthURL: uri}, nil
}

// Disable2FA clears the secret and flag together, keeping the secret-iff-flag
// invariant. Already-disabled accounts are left untouched.
func (s *AuthService) Disable2FA(ctx context.Context, userID int64) error {
	user, err := s.findByID(ctx, userID)
	if err != nil {
		return err
	}
	if !user.TwoFactorEnabled && user.TwoFactorSecret == "" {
		return nil
	}

	user.TwoFactorSecret = ""
	user.TwoFactorEnabled = false
	if _, err := s.store.UpdateUser(ctx, user); err != nil {
		return fmt.Errorf("clear 2fa secret: %w", err)
	}

	log.Printf("2fa disabled id=%d", userID)
	return nil
}

// RegisterFace enrolls face data after a quality check. The quality call
// fails open: enrollment is not an authentication gate, so a face-service
// outage should not block it. A definitive "not valid" still rejects without
// touching the account.
func (s *AuthService) RegisterFace(ctx context.Context, userID int64, faceData string) error {
	user, err := s.findByID(ctx, userID)
	if err != nil {
		return err
	}

	result, err := s.faces.Quality(ctx, faceData)
	if err != nil {
		log.Printf("face quality check unavailable id=%d err=%v", userID, err)
		result.Valid = true
	}
	if !result.Valid {
		return ErrFaceQualityRejected
	}

	user.FaceEncodingData = faceData
	user.FaceVerified = true
	if _, err := s.store.UpdateUser(ctx, user); err != nil {
		return fmt.Errorf("store face data: %w", err)
	}

	log.Printf("face registered id=%d score=%.2f", userID, result.QualityScore)
	return nil
}

// Logout is a stateless contract: the service issues bearer tokens with no
// server-side session table, so logging out is the caller discarding its
// token. Kept as an operation so the boundary stays symmetric and the event
// is logged.
func (s *AuthService) Logout(_ context.Context, userID int64) {
	log.Printf("user logged out id=%d", userID)
}

// ValidateToken delegates entirely to the token manager.
func (s *AuthService) ValidateToken(token string) bool {
	return s.tokens.Validate(token)
}

func (s *AuthService) findByID(ctx context.Context, userID int64) (models.User, error) {
	user, err := s.store.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, fmt.Errorf("find user by id: %w", err)
	}
	return user, nil
}

func newSession(token string, user models.User) Session {
	return Session{
		Token:            token,
		Type:             "Bearer",
		ID:               user.ID,
		Email:            user.Email,
		Username:         user.Username,
		FirstName:        user.FirstName,
		LastName:         user.LastName,
		Roles:            user.Roles,
		FaceVerified:     user.FaceVerified,
		TwoFactorEnabled: user.TwoFactorEnabled,
	}
}
