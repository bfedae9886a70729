package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/linkfolio/backend/internal/adapters/transport/http/dto"
	"github.com/linkfolio/backend/internal/app/password"
	customErrors "github.com/linkfolio/backend/internal/domain/errors"
	"github.com/linkfolio/backend/internal/domain/jwt"
	"github.com/linkfolio/backend/internal/domain/model"
	"github.com/linkfolio/backend/internal/domain/repo"
	"github.com/linkfolio/backend/internal/infra/config"
)

const resetTokenTTL = 10 * time.Minute

type authService struct {
	userRepo repo.UserRepo
	jwtUtil  jwt.JWTUtil
	cfg      *config.Config
	v        *validator.Validate
}

// Service is the session manager: token issuance, refresh-token
// lifecycle and credential verification. One refresh token is live per
// user at a time; a new login overwrites the stored value and thereby
// revokes the previous session.
type Service interface {
	Register(context.Context, dto.RegisterDTO) (model.User, error)
	Login(context.Context, dto.LoginDTO) (model.TokenPair, model.User, error)
	Refresh(ctx context.Context, refreshToken string) (string, error)
	Logout(ctx context.Context, refreshToken string) error
	ForgotPassword(context.Context, dto.ForgotPasswordDTO) (string, error)
	ResetPassword(ctx context.Context, token string, in dto.ResetPasswordDTO) error
}

func New(ur repo.UserRepo, jm jwt.JWTUtil, cfg *config.Config, v *validator.Validate) Service {
	return &authService{userRepo: ur, jwtUtil: jm, cfg: cfg, v: v}
}

func (a *authService) Register(ctx context.Context, in dto.RegisterDTO) (model.User, error) {
	if err := a.v.Struct(in); err != nil {
		return model.User{}, customErrors.NewInvalidArgument(err.Error())
	}

	passwordHash, err := password.Hash(in.Password)
	if err != nil {
		return model.User{}, customErrors.WrapInternal(err, "Register")
	}

	user := model.User{
		ID:           uuid.New(),
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Email:        normalizeEmail(in.Email),
		PasswordHash: passwordHash,
	}
	if _, err = a.userRepo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, customErrors.ErrAlreadyExists) {
			return model.User{}, customErrors.ErrAlreadyExists
		}
		return model.User{}, customErrors.WrapInternal(err, "Register")
	}

	return user, nil
}

func (a *authService) Login(ctx context.Context, in dto.LoginDTO) (model.TokenPair, model.User, error) {
	if err := a.v.Struct(in); err != nil {
		return model.TokenPair{}, model.User{}, customErrors.NewInvalidArgument(err.Error())
	}

	// Unknown email and wrong password come back identical so the
	// endpoint cannot be used to enumerate accounts.
	user, err := a.userRepo.GetUserByEmail(ctx, normalizeEmail(in.Email))
	switch {
	case errors.Is(err, customErrors.ErrNotFound):
		return model.TokenPair{}, model.User{}, customErrors.ErrInvalidCredentials
	case err != nil:
		return model.TokenPair{}, model.User{}, customErrors.WrapInternal(err, "Login")
	}

	if !password.Verify(in.Password, user.PasswordHash) {
		return model.TokenPair{}, model.User{}, customErrors.ErrInvalidCredentials
	}

	rt, rtExp, err := a.jwtUtil.GenerateRefreshToken(user.ID)
	if err != nil {
		return model.TokenPair{}, model.User{}, customErrors.WrapInternal(err, "GenerateRefreshToken")
	}

	// Overwrites any previous refresh token: single-session model.
	if err = a.userRepo.SetRefreshToken(ctx, user.ID, rt); err != nil {
		return model.TokenPair{}, model.User{}, customErrors.WrapInternal(err, "StoreRefresh")
	}

	at, atExp, err := a.jwtUtil.GenerateAccessToken(user.ID)
	if err != nil {
		return model.TokenPair{}, model.User{}, customErrors.WrapInternal(err, "GenerateAccessToken")
	}

	now := time.Now()
	return model.TokenPair{
		AccessToken:  at,
		RefreshToken: rt,
		AccessTTL:    atExp.Sub(now),
		RefreshTTL:   rtExp.Sub(now),
		UserID:       user.ID,
	}, user, nil
}

// Refresh mints a new access token against a presented refresh token. The
// stored column value, not only the signature, decides validity: logout or
// a later login revokes a token that is not yet cryptographically expired.
// The refresh token itself is not rotated here.
func (a *authService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return "", customErrors.ErrMissingToken
	}

	claims, err := a.jwtUtil.ValidateRefreshToken(refreshToken)
	if err != nil {
		return "", customErrors.ErrInvalidToken
	}

	user, err := a.userRepo.GetUserByRefreshToken(ctx, refreshToken)
	switch {
	case errors.Is(err, customErrors.ErrNotFound):
		return "", customErrors.ErrTokenMismatch
	case err != nil:
		return "", customErrors.WrapInternal(err, "Refresh")
	}

	if claims.Subject != user.ID.String() {
		return "", customErrors.ErrTokenMismatch
	}

	at, _, err := a.jwtUtil.GenerateAccessToken(user.ID)
	if err != nil {
		return "", customErrors.WrapInternal(err, "GenerateAccessToken")
	}
	return at, nil
}

// Logout is idempotent: a missing or unmatched token is treated as
// already logged out.
func (a *authService) Logout(ctx context.Context, refreshToken string) error {
	if strings.TrimSpace(refreshToken) == "" {
		return nil
	}

	user, err := a.userRepo.GetUserByRefreshToken(ctx, refreshToken)
	switch {
	case errors.Is(err, customErrors.ErrNotFound):
		return nil
	case err != nil:
		return customErrors.WrapInternal(err, "Logout")
	}

	if err := a.userRepo.SetRefreshToken(ctx, user.ID, ""); err != nil {
		return customErrors.WrapInternal(err, "Logout")
	}
	return nil
}

// ForgotPassword returns the plaintext reset token for out-of-band
// delivery; only its sha256 is stored. The answer does not reveal
// whether the email exists.
func (a *authService) ForgotPassword(ctx context.Context, in dto.ForgotPasswordDTO) (string, error) {
	if err := a.v.Struct(in); err != nil {
		return "", customErrors.NewInvalidArgument(err.Error())
	}

	user, err := a.userRepo.GetUserByEmail(ctx, normalizeEmail(in.Email))
	switch {
	case errors.Is(err, customErrors.ErrNotFound):
		return "", customErrors.ErrNotFound
	case err != nil:
		return "", customErrors.WrapInternal(err, "ForgotPassword")
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", customErrors.WrapInternal(err, "ForgotPassword")
	}
	plain := hex.EncodeToString(raw)
	hash := hashResetToken(plain)
	expires := time.Now().Add(resetTokenTTL)

	user.PasswordResetToken = &hash
	user.PasswordResetExpires = &expires
	if err := a.userRepo.UpdateUser(ctx, user); err != nil {
		return "", customErrors.WrapInternal(err, "ForgotPassword")
	}

	return plain, nil
}

func (a *authService) ResetPassword(ctx context.Context, token string, in dto.ResetPasswordDTO) error {
	if err := a.v.Struct(in); err != nil {
		return customErrors.NewInvalidArgument(err.Error())
	}
	if strings.TrimSpace(token) == "" {
		return customErrors.ErrMissingToken
	}

	user, err := a.userRepo.GetUserByResetToken(ctx, hashResetToken(token))
	switch {
	case errors.Is(err, customErrors.ErrNotFound):
		return customErrors.ErrInvalidToken
	case err != nil:
		return customErrors.WrapInternal(err, "ResetPassword")
	}

	if user.PasswordResetExpires == nil || time.Now().After(*user.PasswordResetExpires) {
		return customErrors.ErrInvalidToken
	}

	passwordHash, err := password.Hash(in.Password)
	if err != nil {
		return customErrors.WrapInternal(err, "ResetPassword")
	}

	user.PasswordHash = passwordHash
	user.PasswordResetToken = nil
	user.PasswordResetExpires = nil
	user.RefreshToken = "" // force re-login everywhere
	if err := a.userRepo.UpdateUser(ctx, user); err != nil {
		return customErrors.WrapInternal(err, "ResetPassword")
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func hashResetToken(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return hex.EncodeToString(sum[:])
}
