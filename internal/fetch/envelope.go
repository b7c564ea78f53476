package fetch

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/go-resty/resty/v2"
	"github.com/loykin/restclient/internal/common"
	"github.com/loykin/restclient/internal/config"
	"github.com/tidwall/sjson"
)

// Envelope keys of the record produced for POST and PUT.
const (
	KeyStatus     = "status"
	KeyStatusText = "statusText"
	KeyData       = "data"
	KeyHeaders    = "headers"
	KeyConfig     = "config"
	KeyRequest    = "request"
)

// dumper prints the transport request. spew tracks visited pointers, so
// self-referencing values terminate.
var dumper = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
	MaxDepth:                4,
}

// envelope builds the transaction record for a side-effecting call.
func envelope(resp *resty.Response, cfg config.Config) (map[string]any, error) {
	headers, err := json.Marshal(resp.Header())
	if err != nil {
		return nil, err
	}
	effective, err := MaskedConfig(cfg)
	if err != nil {
		return nil, err
	}
	var request string
	if resp.Request != nil && resp.Request.RawRequest != nil {
		request = common.NewMasker().MaskString(dumper.Sdump(resp.Request.RawRequest))
	}

	return map[string]any{
		KeyStatus:     resp.StatusCode(),
		KeyStatusText: statusText(resp),
		KeyData:       bodyString(resp.Body()),
		KeyHeaders:    string(headers),
		KeyConfig:     effective,
		KeyRequest:    request,
	}, nil
}

// MaskedConfig serializes cfg as JSON with every credential replaced.
func MaskedConfig(cfg config.Config) (string, error) {
	b, err := json.Marshal(cfg)
	if err != nil {
		return "", err
	}
	if cfg.BasicAuth != nil {
		if b, err = sjson.SetBytes(b, "http-basic-authentication.password", common.MaskedValue); err != nil {
			return "", err
		}
	}
	if cfg.BearerToken != "" {
		if b, err = sjson.SetBytes(b, "bearer-tokken", common.MaskedValue); err != nil {
			return "", err
		}
	}
	for name := range cfg.Headers {
		if strings.EqualFold(name, "Authorization") {
			if b, err = sjson.SetBytes(b, "headers."+name, common.MaskedValue); err != nil {
				return "", err
			}
		}
	}
	return string(b), nil
}

func statusText(resp *resty.Response) string {
	code := resp.StatusCode()
	if text := strings.TrimSpace(strings.TrimPrefix(resp.Status(), strconv.Itoa(code))); text != "" {
		return text
	}
	return http.StatusText(code)
}

// bodyString returns compact JSON for JSON bodies and the raw text otherwise.
func bodyString(body []byte) string {
	if json.Valid(body) {
		var buf bytes.Buffer
		if err := json.Compact(&buf, body); err == nil {
			return buf.String()
		}
	}
	return string(body)
}
