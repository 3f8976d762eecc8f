package auth

import (
	"errors"
	"time"

	"inkwell/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for every reset token that fails
// verification: bad signature, malformed payload, expired, or a user id
// that no longer resolves. Callers get no further detail.
var ErrInvalidToken = errors.New("auth: invalid or expired reset token")

// DefaultResetTokenTTL matches the 30 minute window a reset link stays
// usable.
const DefaultResetTokenTTL = 30 * time.Minute

type resetClaims struct {
	jwt.RegisteredClaims
	UserID uint `json:"uid"`
}

// SignResetToken produces a signed, self-contained token binding the
// user id to an expiry. Nothing is persisted; the expiry lives inside
// the token itself.
func SignResetToken(userID uint, secret []byte, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, resetClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
		UserID: userID,
	})
	return token.SignedString(secret)
}

// ParseResetToken checks signature and expiry and returns the embedded
// user id. Any failure maps to ErrInvalidToken.
func ParseResetToken(tokenString string, secret []byte) (uint, error) {
	claims := &resetClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return 0, ErrInvalidToken
	}
	return claims.UserID, nil
}

// UserLookup resolves a user id to a live user record.
type UserLookup interface {
	ByID(id uint) (*models.User, error)
}

// ResetTokenService issues and verifies password reset tokens against a
// process-wide secret. Tokens are stateless; there is no token table
// and nothing to clean up.
type ResetTokenService struct {
	secret []byte
	ttl    time.Duration
	users  UserLookup
}

func NewResetTokenService(secret []byte, ttl time.Duration, users UserLookup) *ResetTokenService {
	if ttl <= 0 {
		ttl = DefaultResetTokenTTL
	}
	return &ResetTokenService{secret: secret, ttl: ttl, users: users}
}

// Issue signs a token for the user with the service's default expiry.
func (s *ResetTokenService) Issue(user *models.User) (string, error) {
	return SignResetToken(user.ID, s.secret, s.ttl)
}

// IssueWithTTL signs a token with a caller-specified expiry.
func (s *ResetTokenService) IssueWithTTL(user *models.User, ttl time.Duration) (string, error) {
	return SignResetToken(user.ID, s.secret, ttl)
}

// Verify returns the user a valid token was issued for. It never
// panics and never reports why a token was rejected; a user deleted
// since issuance is rejected the same way.
func (s *ResetTokenService) Verify(tokenString string) (*models.User, error) {
	userID, err := ParseResetToken(tokenString, s.secret)
	if err != nil {
		return nil, ErrInvalidToken
	}
	user, err := s.users.ByID(userID)
	if err != nil {
		return nil, ErrInvalidToken
	}
	return user, nil
}
