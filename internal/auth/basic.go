package auth

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"

	"github.com/go-resty/resty/v2"
)

// Basic sends username/password as HTTP basic auth.
type Basic struct {
	Username string
	Password string
}

func (b Basic) Name() string { return "basic" }

// Apply hands the credentials to resty, which writes the Authorization header.
func (b Basic) Apply(_ context.Context, req *resty.Request) error {
	if strings.TrimSpace(b.Username) == "" {
		return errors.New("basic: username is required")
	}
	req.SetBasicAuth(b.Username, b.Password)
	return nil
}

// Header returns the Authorization value resty will produce for b.
func (b Basic) Header() string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(b.Username+":"+b.Password))
}
