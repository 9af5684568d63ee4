package apisvc

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sendgrid/rest"

	"github.com/trezcool/edumaster/core/auth"
	"github.com/trezcool/edumaster/core/user"
)

var _ auth.Authenticator = (*Client)(nil)

var errNoToken = errors.New("login response carries no token")

type loginResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

func (c *Client) Signup(ctx context.Context, data user.NewStudent) (user.Profile, error) {
	var profile user.Profile
	err := c.send(ctx, rest.Post, "/auth/signup", nil, data, &profile)
	return profile, errors.Wrap(err, "signing up")
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, creds user.Credentials) (string, error) {
	var resp loginResponse
	if err := c.send(ctx, rest.Post, "/auth/login", nil, creds, &resp); err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", errNoToken
	}
	return resp.Token, nil
}

func (c *Client) Profile(ctx context.Context) (user.Profile, error) {
	var profile user.Profile
	err := c.send(ctx, rest.Get, "/user/profile", nil, nil, &profile)
	return profile, errors.Wrap(err, "fetching profile")
}

// LookupProfile fetches the profile of the token's owner.
func (c *Client) LookupProfile(ctx context.Context, token string) (user.Profile, error) {
	return c.WithToken(token).Profile(ctx)
}

func (c *Client) UpdateProfile(ctx context.Context, data user.UpdateProfile) (user.Profile, error) {
	var profile user.Profile
	err := c.send(ctx, rest.Put, "/user/profile", nil, data, &profile)
	return profile, errors.Wrap(err, "updating profile")
}

// Stats fetches the progress of the logged in user.
func (c *Client) Stats(ctx context.Context) (user.Stats, error) {
	var stats user.Stats
	err := c.send(ctx, rest.Get, "/user/stats", nil, nil, &stats)
	return stats, errors.Wrap(err, "fetching stats")
}

func (c *Client) CreateAdmin(ctx context.Context, data user.NewAdmin) (user.Profile, error) {
	var profile user.Profile
	err := c.send(ctx, rest.Post, "/admin/create-admin", nil, data, &profile)
	return profile, errors.Wrap(err, "creating admin")
}

func (c *Client) ListAdmins(ctx context.Context) ([]user.Profile, error) {
	var admins []user.Profile
	err := c.send(ctx, rest.Get, "/admin/all-admin", nil, nil, &admins)
	return admins, errors.Wrap(err, "listing admins")
}

func (c *Client) ListUsers(ctx context.Context) ([]user.Profile, error) {
	var users []user.Profile
	err := c.send(ctx, rest.Get, "/admin/all-user", nil, nil, &users)
	return users, errors.Wrap(err, "listing users")
}
