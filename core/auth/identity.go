package auth

import (
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/pkg/errors"

	"github.com/trezcool/edumaster/core"
	"github.com/trezcool/edumaster/core/user"
)

var (
	NowFunc = time.Now // mockable

	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// Claims are the token claims the client cares about. The server signs the token,
// the client only decodes it.
type Claims struct {
	jwt.StandardClaims
	UserID string `json:"_id,omitempty"`
	Email  string `json:"email,omitempty"`
	Role   string `json:"role,omitempty"`
}

// Valid only checks the expiry: the signature cannot be verified client side.
func (c Claims) Valid() error {
	if c.ExpiresAt != 0 && NowFunc().Unix() >= c.ExpiresAt {
		return ErrTokenExpired
	}
	return nil
}

// Identity is the authenticated caller. The zero value is unauthenticated.
type Identity struct {
	Token     string
	UserID    string
	Email     string
	Role      string
	ExpiresAt time.Time
}

func (id Identity) IsAuthenticated() bool {
	return id.Token != "" && id.Role != ""
}

func (id Identity) HasRole(roles ...string) bool {
	for _, role := range roles {
		if id.Role == role {
			return true
		}
	}
	return false
}

// DecodeToken reads the claims of a bearer token without verifying its signature
// and rejects expired tokens.
func DecodeToken(token string) (Claims, error) {
	var claims Claims
	if _, _, err := new(jwt.Parser).ParseUnverified(token, &claims); err != nil {
		return Claims{}, errors.Wrap(ErrInvalidToken, err.Error())
	}
	if err := claims.Valid(); err != nil {
		return Claims{}, err
	}
	if claims.UserID == "" {
		claims.UserID = claims.Subject
	}
	claims.Email = core.CleanString(claims.Email, true /* lower */)
	return claims, nil
}

func newIdentity(token string, claims Claims, role string) Identity {
	id := Identity{
		Token:  token,
		UserID: claims.UserID,
		Email:  claims.Email,
		Role:   role,
	}
	if claims.ExpiresAt != 0 {
		id.ExpiresAt = time.Unix(claims.ExpiresAt, 0).UTC()
	}
	return id
}

// roleFromClaims returns the role carried by the token, if it is a known one.
func roleFromClaims(claims Claims) (string, bool) {
	if user.IsKnownRole(claims.Role) {
		return claims.Role, true
	}
	return "", false
}
