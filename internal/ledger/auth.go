package ledger

import (
	"context"

	"github.com/mhartley/tally/internal/session"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token             string `json:"token"`
	UserID            flexID `json:"userId"`
	FullName          string `json:"fullName"`
	Email             string `json:"email"`
	PreferredCurrency string `json:"preferredCurrency"`
}

// Login exchanges credentials for a bearer token and stores it in the
// session. Invalid credentials come back as an authorization error without
// tripping the forced-logout guard (there is no session to lose yet).
func (c *Client) Login(ctx context.Context, email, password string) (*session.Credential, error) {
	var resp loginResponse
	err := c.post(ctx, "/auth/login", nil, loginRequest{Email: email, Password: password}, &resp)
	if err != nil {
		return nil, err
	}

	cred := &session.Credential{
		Token:             resp.Token,
		UserID:            resp.UserID.String(),
		FullName:          resp.FullName,
		Email:             resp.Email,
		PreferredCurrency: resp.PreferredCurrency,
	}
	if err := c.session.Login(cred); err != nil {
		return nil, err
	}
	return cred, nil
}
