package storeapi

import (
	"context"
	"net/http"
	"net/url"

	"github.com/bhargavsatvara/zyqora-storefront/pkg/types"
)

type wireAuthSession struct {
	Token string `json:"token"`
	User  struct {
		flexID
		Name  string `json:"name"`
		Email string `json:"email"`
		Role  string `json:"role"`
	} `json:"user"`
}

func (w wireAuthSession) domain() types.AuthSession {
	return types.AuthSession{
		Token: w.Token,
		User: types.User{
			ID:    w.User.value(),
			Name:  w.User.Name,
			Email: w.User.Email,
			Role:  w.User.Role,
		},
	}
}

func (c *Client) Login(ctx context.Context, email, password string) (types.AuthSession, error) {
	var out wireAuthSession
	err := c.do(ctx, call{
		method: http.MethodPost,
		path:   "/auth/login",
		body:   map[string]string{"email": email, "password": password},
	}, &out)
	return out.domain(), err
}

func (c *Client) Signup(ctx context.Context, name, email, password string) (types.AuthSession, error) {
	var out wireAuthSession
	err := c.do(ctx, call{
		method: http.MethodPost,
		path:   "/auth/signup",
		body:   map[string]string{"name": name, "email": email, "password": password},
	}, &out)
	return out.domain(), err
}

func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	return c.do(ctx, call{
		method: http.MethodPost,
		path:   "/auth/forgot-password",
		body:   map[string]string{"email": email},
	}, nil)
}

func (c *Client) ResetPassword(ctx context.Context, resetToken, password string) error {
	return c.do(ctx, call{
		method: http.MethodPost,
		path:   "/auth/reset-password/" + url.PathEscape(resetToken),
		route:  "/auth/reset-password/:token",
		body:   map[string]string{"password": password},
	}, nil)
}
