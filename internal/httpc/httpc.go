package httpc

import (
	"crypto/tls"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/loykin/restclient/internal/util"
)

// Httpc describes the transport settings for outbound plugin requests.
// The zero value verifies certificates; callers opt into Insecure explicitly.
type Httpc struct {
	Insecure   bool
	MinVersion uint16
	MaxVersion uint16
	// Timeout bounds a whole request when non-zero. The plugin itself
	// relies on the caller's context instead.
	Timeout time.Duration
}

// TLSConfig returns the tls.Config for h, or nil when the transport default applies.
func (h *Httpc) TLSConfig() *tls.Config {
	if !h.Insecure && h.MinVersion == 0 && h.MaxVersion == 0 {
		return nil
	}
	// #nosec G402 -- skipping verification is an explicit per-plugin setting
	return &tls.Config{
		InsecureSkipVerify: h.Insecure,
		MinVersion:         h.MinVersion,
		MaxVersion:         h.MaxVersion,
	}
}

// New returns a resty.Client configured according to the receiver's settings.
func (h *Httpc) New() *resty.Client {
	c := resty.New()
	if cfg := h.TLSConfig(); cfg != nil {
		c.SetTLSClientConfig(cfg)
	}
	if h.Timeout > 0 {
		c.SetTimeout(h.Timeout)
	}
	return c
}

// WithInsecure returns a copy of h with verification toggled.
func (h Httpc) WithInsecure(insecure bool) *Httpc {
	h.Insecure = insecure
	return &h
}

// ParseTLSVersion converts a TLS version string to the corresponding crypto/tls constant.
// Supports "1.2", "12", "tls1.2", "tls12" style values. Returns 0 if not recognized.
func ParseTLSVersion(version string) uint16 {
	switch util.TrimAndLower(version) {
	case "1.0", "10", "tls1.0", "tls10":
		return tls.VersionTLS10
	case "1.1", "11", "tls1.1", "tls11":
		return tls.VersionTLS11
	case "1.2", "12", "tls1.2", "tls12":
		return tls.VersionTLS12
	case "1.3", "13", "tls1.3", "tls13":
		return tls.VersionTLS13
	default:
		return 0
	}
}
