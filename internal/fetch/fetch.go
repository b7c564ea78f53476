package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/loykin/restclient/internal/auth"
	"github.com/loykin/restclient/internal/common"
	"github.com/loykin/restclient/internal/config"
	"github.com/loykin/restclient/internal/errs"
	"github.com/loykin/restclient/internal/extract"
)

// Result is the outcome of one dispatched request.
type Result struct {
	Method     string
	StatusCode int
	Body       []byte
	// Value is what gets merged into every record.
	Value any
}

// Dispatcher issues the single request described by a Config.
type Dispatcher struct {
	client *resty.Client
}

// New returns a Dispatcher sending through client.
func New(client *resty.Client) *Dispatcher {
	return &Dispatcher{client: client}
}

// Supported reports whether method is GET, POST or PUT in any letter case.
// Surrounding whitespace is not tolerated.
func Supported(method string) bool {
	switch strings.ToUpper(method) {
	case http.MethodGet, http.MethodPost, http.MethodPut:
		return true
	default:
		return false
	}
}

// Do sends cfg's request and transforms the response.
// Every error it returns is an *errs.Error: unsupported-method and numeric
// errors as-is, anything else wrapped as a fetch error for cfg.URL.
func (d *Dispatcher) Do(ctx context.Context, cfg config.Config) (*Result, error) {
	if !Supported(cfg.Method) {
		return nil, errs.UnsupportedMethod(cfg.Method)
	}
	method := strings.ToUpper(cfg.Method)

	logger := common.GetLogger().WithComponent("fetch").WithRequest(method, cfg.URL)
	logger.Debug("dispatching request", "jpath", cfg.JPath, "has_body", cfg.Data != nil)

	if cfg.TimeoutMillis > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(cfg.TimeoutMillis)*time.Millisecond)
		defer cancel()
	}

	res, err := d.do(ctx, method, cfg)
	if err != nil {
		if errs.Passthrough(err) {
			return nil, err
		}
		logger.Error("request failed", "error", err)
		return nil, errs.Fetch(cfg.URL, err)
	}
	logger.Debug("request completed", "status_code", res.StatusCode, "response_size", len(res.Body))
	return res, nil
}

func (d *Dispatcher) do(ctx context.Context, method string, cfg config.Config) (*Result, error) {
	req, err := d.buildRequest(ctx, cfg)
	if err != nil {
		return nil, err
	}
	resp, err := execByMethod(req, method, cfg.URL)
	if err != nil {
		return nil, err
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("Request failed with status code %d", resp.StatusCode())
	}

	res := &Result{Method: method, StatusCode: resp.StatusCode(), Body: resp.Body()}
	switch method {
	case http.MethodGet:
		res.Value, err = transformGet(res.Body, cfg.JPath)
	default:
		res.Value, err = envelope(resp, cfg)
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (d *Dispatcher) buildRequest(ctx context.Context, cfg config.Config) (*resty.Request, error) {
	req := d.client.R().SetContext(ctx).SetHeaders(cfg.Headers).SetQueryParams(cfg.Params)
	if err := auth.Apply(ctx, req, auth.FromConfig(cfg)...); err != nil {
		return nil, err
	}
	switch body := cfg.Data.(type) {
	case nil:
	case string:
		if json.Valid([]byte(body)) {
			req.SetHeader("Content-Type", "application/json")
		}
		req.SetBody(body)
	default:
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		req.SetHeader("Content-Type", "application/json")
		req.SetBody(b)
	}
	return req, nil
}

func execByMethod(req *resty.Request, method, url string) (*resty.Response, error) {
	switch method {
	case http.MethodGet:
		return req.Get(url)
	case http.MethodPost:
		return req.Post(url)
	case http.MethodPut:
		return req.Put(url)
	default:
		return nil, fmt.Errorf("unsupported method: %s", method)
	}
}

// transformGet extracts the measurement from a GET body and gates it as numeric.
func transformGet(body []byte, jpath string) (any, error) {
	var value any
	if strings.TrimSpace(jpath) == "" {
		v, err := extract.Decode(body)
		if err != nil {
			return nil, err
		}
		value = v
	} else {
		matches, err := extract.Query(body, jpath)
		if err != nil {
			return nil, err
		}
		value = extract.Select(matches)
	}
	return extract.Numeric(value)
}
