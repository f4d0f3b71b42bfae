package auth

import (
	"context"
)

// Session is the authenticated caller. The app is single-tenant, so a
// session only carries the subject the token resolved to.
type Session struct {
	Subject string `json:"subject"`
}

type Provider interface {
	ValidateTokenLocal(token string) (*Session, error)
	ValidateTokenRemote(ctx context.Context, token string) (*Session, error)
}
