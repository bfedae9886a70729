package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	customErrors "github.com/linkfolio/backend/internal/domain/errors"
	domainjwt "github.com/linkfolio/backend/internal/domain/jwt"
	"github.com/linkfolio/backend/internal/infra/config"
)

// JwtUtilImpl signs with a process-wide HMAC secret loaded once at startup.
// Rotating the secret invalidates every outstanding token, which is
// acceptable given the short lifetimes.
type JwtUtilImpl struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	issuer     string
	audience   string
}

func NewJWTUtil(cfg *config.Config) (*JwtUtilImpl, error) {
	if cfg.JWTSecret == "" {
		return nil, customErrors.NewInvalidArgument("jwt secret is empty")
	}
	return &JwtUtilImpl{
		secret:     []byte(cfg.JWTSecret),
		accessTTL:  cfg.AccessTokenTTL,
		refreshTTL: cfg.RefreshTokenTTL,
		issuer:     cfg.JWTIssuer,
		audience:   cfg.JWTAudience,
	}, nil
}

func (j *JwtUtilImpl) GenerateAccessToken(userID uuid.UUID) (string, time.Time, error) {
	now := time.Now()

	claims := domainjwt.AccessClaims{
		TokenType: domainjwt.TokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			Issuer:    j.issuer,
			Audience:  jwt.ClaimStrings{j.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.accessTTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secret)
	if err != nil {
		return "", time.Time{}, customErrors.WrapInternal(err, "sign access token")
	}

	return signed, claims.ExpiresAt.Time, nil
}

func (j *JwtUtilImpl) GenerateRefreshToken(userID uuid.UUID) (string, time.Time, error) {
	now := time.Now()

	claims := domainjwt.RefreshClaims{
		TokenType: domainjwt.TokenTypeRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			Issuer:    j.issuer,
			Audience:  jwt.ClaimStrings{j.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.refreshTTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secret)
	if err != nil {
		return "", time.Time{}, customErrors.WrapInternal(err, "sign refresh token")
	}

	return signed, claims.ExpiresAt.Time, nil
}

func (j *JwtUtilImpl) ValidateAccessToken(raw string) (domainjwt.AccessClaims, error) {
	token, err := jwt.ParseWithClaims(raw, &domainjwt.AccessClaims{}, j.keyFunc,
		jwt.WithIssuedAt(), jwt.WithLeeway(30*time.Second))

	if err != nil || !token.Valid {
		return domainjwt.AccessClaims{}, customErrors.ErrInvalidToken
	}

	claims, ok := token.Claims.(*domainjwt.AccessClaims)
	if !ok {
		return domainjwt.AccessClaims{}, customErrors.WrapInternal(
			errors.New("claims not AccessClaims"), "ValidateAccessToken",
		)
	}
	if claims.TokenType != domainjwt.TokenTypeAccess {
		return domainjwt.AccessClaims{}, customErrors.ErrInvalidToken
	}

	if err := j.checkIssuerAudience(claims.Issuer, claims.Audience); err != nil {
		return domainjwt.AccessClaims{}, err
	}

	return *claims, nil
}

func (j *JwtUtilImpl) ValidateRefreshToken(raw string) (domainjwt.RefreshClaims, error) {
	token, err := jwt.ParseWithClaims(raw, &domainjwt.RefreshClaims{}, j.keyFunc,
		jwt.WithIssuedAt(), jwt.WithLeeway(30*time.Second))

	if err != nil || !token.Valid {
		return domainjwt.RefreshClaims{}, customErrors.ErrInvalidToken
	}

	claims, ok := token.Claims.(*domainjwt.RefreshClaims)
	if !ok {
		return domainjwt.RefreshClaims{}, customErrors.WrapInternal(
			errors.New("claims not RefreshClaims"), "ValidateRefreshToken",
		)
	}
	if claims.TokenType != domainjwt.TokenTypeRefresh {
		return domainjwt.RefreshClaims{}, customErrors.ErrInvalidToken
	}

	if err := j.checkIssuerAudience(claims.Issuer, claims.Audience); err != nil {
		return domainjwt.RefreshClaims{}, err
	}

	return *claims, nil
}

func (j *JwtUtilImpl) keyFunc(t *jwt.Token) (interface{}, error) {
	if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
		return nil, customErrors.ErrInvalidToken
	}
	return j.secret, nil
}

func (j *JwtUtilImpl) checkIssuerAudience(issuer string, audience jwt.ClaimStrings) error {
	if j.issuer != "" && issuer != j.issuer {
		return customErrors.ErrInvalidToken
	}

	if j.audience != "" {
		okAudi := false
		for _, a := range audience {
			if a == j.audience {
				okAudi = true
				break
			}
		}
		if !okAudi {
			return customErrors.ErrInvalidToken
		}
	}

	return nil
}
