package echoapi

import (
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/edumaster/apps/devapi/inmemdb"
	"github.com/trezcool/edumaster/core"
)

const (
	TokenHeader     = "token"
	contextClaimKey = "claims"
	contextUserKey  = "user"
)

// NowFunc is the clock used for tokens and exam attempts.
var NowFunc = time.Now // mockable

// Claims represents the authorization claims transmitted via a JWT.
// Claims carry no role: clients read it from the profile endpoint.
type Claims struct {
	jwt.StandardClaims
	UserID string `json:"_id"`
	Email  string `json:"email,omitempty"`
}

func GetUserClaims(usr inmemdb.User, conf *core.Config) *Claims {
	now := NowFunc()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    conf.AppName,
			Subject:   usr.ID,
			ExpiresAt: now.Add(conf.DevAPI.JWTExpirationDelta).Unix(),
			IssuedAt:  now.Unix(),
		},
		UserID: usr.ID,
		Email:  usr.Email,
	}
}

// GenerateToken generates a signed JWT token string representing the user Claims.
func GenerateToken(claims *Claims, secretKey string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	ss, err := token.SignedString([]byte(secretKey))
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

func authenticate(email, pwd string, db *inmemdb.DB, conf *core.Config) (string, error) {
	usr, err := db.UserByEmail(email)
	if err != nil {
		if err == inmemdb.ErrNotFound {
			return "", errInvalidLogin
		}
		return "", errors.Wrap(err, "finding user by email")
	}
	if err = usr.CheckPassword(pwd); err != nil {
		return "", errInvalidLogin
	}
	return GenerateToken(GetUserClaims(usr, conf), conf.DevAPI.SecretKey)
}

// tokenMiddleware verifies the raw JWT carried by the `token` header and loads its user.
func tokenMiddleware(secretKey string, db *inmemdb.DB) echo.MiddlewareFunc {
	keyFunc := func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(secretKey), nil
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			raw := ctx.Request().Header.Get(TokenHeader)
			if raw == "" {
				return errMissingToken
			}

			claims := new(Claims)
			token, err := jwt.ParseWithClaims(raw, claims, keyFunc)
			if err != nil || !token.Valid {
				return errInvalidToken
			}

			usr, err := db.UserByID(claims.UserID)
			if err != nil {
				return errInvalidToken
			}
			ctx.Set(contextClaimKey, *claims)
			ctx.Set(contextUserKey, usr)
			return next(ctx)
		}
	}
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if claims, ok := ctx.Get(contextClaimKey).(Claims); ok {
		return claims, nil
	}
	return Claims{}, errMissingToken
}

func getContextUser(ctx echo.Context) (inmemdb.User, error) {
	if usr, ok := ctx.Get(contextUserKey).(inmemdb.User); ok {
		return usr, nil
	}
	return inmemdb.User{}, errMissingToken
}
