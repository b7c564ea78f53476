package auth

import (
	"context"

	"github.com/go-resty/resty/v2"
	"github.com/loykin/restclient/internal/config"
)

// Method is an authentication scheme applied to an outgoing request.
type Method interface {
	Name() string
	Apply(ctx context.Context, req *resty.Request) error
}

// FromConfig returns the methods configured for cfg in application order.
// Bearer goes first so that basic credentials, when both are present,
// take over the Authorization header.
func FromConfig(cfg config.Config) []Method {
	var methods []Method
	if cfg.BearerToken != "" {
		methods = append(methods, Bearer{Token: cfg.BearerToken})
	}
	if cfg.BasicAuth != nil {
		methods = append(methods, Basic{Username: cfg.BasicAuth.Username, Password: cfg.BasicAuth.Password})
	}
	return methods
}

// Apply runs every method against req.
func Apply(ctx context.Context, req *resty.Request, methods ...Method) error {
	for _, m := range methods {
		if err := m.Apply(ctx, req); err != nil {
			return err
		}
	}
	return nil
}
