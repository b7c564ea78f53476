package auth

import (
	"context"
	"strings"

	"github.com/go-resty/resty/v2"
)

// Bearer passes a pre-issued token through as "Authorization: Bearer <token>".
type Bearer struct {
	Token string
}

func (b Bearer) Name() string { return "bearer" }

func (b Bearer) Apply(_ context.Context, req *resty.Request) error {
	tok := strings.TrimSpace(b.Token)
	if tok == "" {
		return nil
	}
	req.SetHeader("Authorization", "Bearer "+tok)
	return nil
}
