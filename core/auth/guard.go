package auth

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/trezcool/edumaster/core"
	"github.com/trezcool/edumaster/core/user"
)

// TokenKey is the durable storage key holding the bearer token.
const TokenKey = "token"

var (
	ErrUnauthenticated = errors.New("not logged in")
	ErrForbidden       = errors.New("permission denied")
)

// Authenticator is the identity service the guard talks to.
type Authenticator interface {
	Login(ctx context.Context, creds user.Credentials) (string, error)
	LookupProfile(ctx context.Context, token string) (user.Profile, error)
}

// Guard owns the caller's identity for one running client.
type Guard struct {
	mu       sync.RWMutex
	authn    Authenticator
	store    core.Storage
	logger   core.Logger
	identity Identity
}

func NewGuard(authn Authenticator, store core.Storage, logger core.Logger) *Guard {
	return &Guard{
		authn:  authn,
		store:  store,
		logger: logger,
	}
}

// Token returns the current bearer token, or "" when logged out.
func (g *Guard) Token() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.identity.Token
}

func (g *Guard) Identity() Identity {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.identity
}

// Login authenticates, resolves the caller's role and persists the token.
func (g *Guard) Login(ctx context.Context, creds user.Credentials) (Identity, error) {
	token, err := g.authn.Login(ctx, creds)
	if err != nil {
		return Identity{}, errors.Wrap(err, "logging in")
	}
	id, err := g.resolve(ctx, token)
	if err != nil {
		return Identity{}, err
	}
	if err := g.store.Set(ctx, TokenKey, token); err != nil {
		return Identity{}, errors.Wrap(err, "persisting token")
	}

	g.mu.Lock()
	g.identity = id
	g.mu.Unlock()
	return id, nil
}

// Restore loads the persisted token. A missing token leaves the guard logged out;
// an expired or undecodable one is deleted.
func (g *Guard) Restore(ctx context.Context) (Identity, error) {
	token, err := g.store.Get(ctx, TokenKey)
	if err != nil {
		if errors.Cause(err) == core.ErrKeyNotFound {
			return Identity{}, nil
		}
		return Identity{}, errors.Wrap(err, "reading token")
	}

	id, err := g.resolve(ctx, token)
	if err != nil {
		if c := errors.Cause(err); c == ErrInvalidToken || c == ErrTokenExpired {
			g.logger.Info("discarding stored token", err)
			if dErr := g.store.Delete(ctx, TokenKey); dErr != nil {
				return Identity{}, errors.Wrap(dErr, "deleting token")
			}
			return Identity{}, nil
		}
		return Identity{}, err
	}

	g.mu.Lock()
	g.identity = id
	g.mu.Unlock()
	return id, nil
}

func (g *Guard) Logout(ctx context.Context) error {
	g.mu.Lock()
	g.identity = Identity{}
	g.mu.Unlock()

	if err := g.store.Delete(ctx, TokenKey); err != nil && errors.Cause(err) != core.ErrKeyNotFound {
		return errors.Wrap(err, "deleting token")
	}
	return nil
}

// Require checks that the caller is logged in with one of roles (any role when none are given).
func (g *Guard) Require(roles ...string) error {
	id := g.Identity()
	if !id.IsAuthenticated() {
		return ErrUnauthenticated
	}
	if len(roles) > 0 && !id.HasRole(roles...) {
		return ErrForbidden
	}
	return nil
}

// RequireAtLeast checks that the caller is logged in with role or a role of higher
// priority (super-admin > admin > student).
func (g *Guard) RequireAtLeast(role string) error {
	id := g.Identity()
	if !id.IsAuthenticated() {
		return ErrUnauthenticated
	}
	if user.RolePriority(id.Role) < user.RolePriority(role) {
		return ErrForbidden
	}
	return nil
}

// resolve trusts the role claim when the token carries a known one,
// otherwise asks the identity service once.
func (g *Guard) resolve(ctx context.Context, token string) (Identity, error) {
	claims, err := DecodeToken(token)
	if err != nil {
		return Identity{}, err
	}
	if role, ok := roleFromClaims(claims); ok {
		return newIdentity(token, claims, role), nil
	}

	profile, err := g.authn.LookupProfile(ctx, token)
	if err != nil {
		return Identity{}, errors.Wrap(err, "looking up profile")
	}
	role := profile.Role
	if !user.IsKnownRole(role) {
		g.logger.Warn("unknown role in profile, falling back to student", map[string]interface{}{"role": role})
		role = user.RoleStudent
	}
	if claims.UserID == "" {
		claims.UserID = profile.ID
	}
	if claims.Email == "" {
		claims.Email = core.CleanString(profile.Email, true /* lower */)
	}
	return newIdentity(token, claims, role), nil
}
