package config

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cast"
	"github.com/loykin/restclient/internal/constants"
	"github.com/loykin/restclient/internal/errs"
)

// BasicAuth is the username/password pair sent as HTTP basic auth.
type BasicAuth struct {
	Username string `mapstructure:"username" json:"username" validate:"required"`
	Password string `mapstructure:"password" json:"password"`
}

// Config is the canonical, validated plugin configuration.
// It is produced once by Validate and never modified afterwards.
type Config struct {
	Method      string            `json:"method"`
	URL         string            `json:"url"`
	Data        any               `json:"data,omitempty"`
	Headers     map[string]string `json:"headers,omitempty"`
	Params      map[string]string `json:"params,omitempty"`
	BasicAuth   *BasicAuth        `json:"http-basic-authentication,omitempty"`
	BearerToken string            `json:"bearer-tokken,omitempty"`
	JPath       string            `json:"jpath,omitempty"`
	Output      string            `json:"output"`
	// TimeoutMillis bounds the whole request; zero means no per-request limit.
	TimeoutMillis int `json:"timeout,omitempty"`
	// Insecure disables TLS peer verification. Targets are commonly
	// self-signed devices, so it defaults to true.
	Insecure bool `json:"insecure"`
}

// flat: {method, url, data?, http-basic-authentication?, bearer-tokken?, jpath?, output}
type flatShape struct {
	Method      *string    `mapstructure:"method" validate:"required"`
	URL         *string    `mapstructure:"url" validate:"required"`
	Data        any        `mapstructure:"data"`
	BasicAuth   *BasicAuth `mapstructure:"http-basic-authentication"`
	BearerToken *string    `mapstructure:"bearer-tokken"`
	BearerAlias *string    `mapstructure:"bearer-token"`
	JPath       *string    `mapstructure:"jpath"`
	Output      *string    `mapstructure:"output" validate:"required,min=1"`
	Insecure    *bool      `mapstructure:"insecure"`
}

// nested: {query: {method, url, data?, headers?, auth?, params?, timeout?}, jpath?, output}
type nestedShape struct {
	Query    *queryShape `mapstructure:"query" validate:"required"`
	JPath    *string     `mapstructure:"jpath"`
	Output   *string     `mapstructure:"output" validate:"required,min=1"`
	Insecure *bool       `mapstructure:"insecure"`
}

type queryShape struct {
	Method  *string           `mapstructure:"method" validate:"required"`
	URL     *string           `mapstructure:"url" validate:"required"`
	Data    any               `mapstructure:"data"`
	Headers map[string]string `mapstructure:"headers"`
	Auth    *BasicAuth        `mapstructure:"auth"`
	Params  map[string]any    `mapstructure:"params"`
	Timeout *int              `mapstructure:"timeout" validate:"omitempty,min=0"`
	// anything else is rejected by validateNested
	Rest map[string]any `mapstructure:",remain"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("mapstructure"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// Validate turns a raw configuration map into a Config.
// It never performs I/O. Every failure is an *errs.Error of kind KindConfig.
func Validate(raw map[string]any) (Config, error) {
	if len(raw) == 0 {
		return Config{}, errs.Config(constants.MsgConfigNotProvided)
	}
	if _, nested := raw["query"]; nested {
		return validateNested(raw)
	}
	return validateFlat(raw)
}

func validateFlat(raw map[string]any) (Config, error) {
	var s flatShape
	if err := decode(raw, &s); err != nil {
		return Config{}, err
	}
	if err := check(s); err != nil {
		return Config{}, err
	}
	cfg := Config{
		Method:    *s.Method,
		URL:       *s.URL,
		Data:      s.Data,
		BasicAuth: s.BasicAuth,
		JPath:     deref(s.JPath),
		Output:    *s.Output,
		Insecure:  derefBool(s.Insecure, true),
	}
	cfg.BearerToken = deref(s.BearerToken)
	if cfg.BearerToken == "" {
		cfg.BearerToken = deref(s.BearerAlias)
	}
	return cfg, nil
}

func validateNested(raw map[string]any) (Config, error) {
	if _, ok := raw["query"].(map[string]any); !ok {
		return Config{}, errs.Config(`"query" parameter must be an object.`)
	}
	var s nestedShape
	if err := decode(raw, &s); err != nil {
		return Config{}, err
	}
	if err := check(s); err != nil {
		return Config{}, err
	}
	if len(s.Query.Rest) > 0 {
		return Config{}, errs.Config(`"%s" query option is not supported.`, firstKey(s.Query.Rest))
	}
	params, err := queryParams(s.Query.Params)
	if err != nil {
		return Config{}, err
	}
	cfg := Config{
		Method:    *s.Query.Method,
		URL:       *s.Query.URL,
		Data:      s.Query.Data,
		Headers:   s.Query.Headers,
		Params:    params,
		BasicAuth: s.Query.Auth,
		JPath:     deref(s.JPath),
		Output:    *s.Output,
		Insecure:  derefBool(s.Insecure, true),
	}
	if s.Query.Timeout != nil {
		cfg.TimeoutMillis = *s.Query.Timeout
	}
	return cfg, nil
}

// queryParams renders every query-string value as text. Lists and objects
// have no single string form and are rejected.
func queryParams(raw map[string]any) (map[string]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		s, err := cast.ToStringE(v)
		if err != nil {
			return nil, errs.Config(`"params.%s" parameter must be a scalar.`, k)
		}
		out[k] = s
	}
	return out, nil
}

func firstKey(m map[string]any) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys[0]
}

func decode(raw map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  out,
		TagName: "mapstructure",
	})
	if err != nil {
		return fmt.Errorf("config decoder: %w", err)
	}
	if err := dec.Decode(raw); err != nil {
		return errs.Config("Invalid config: %s", flattenDecodeError(err))
	}
	return nil
}

// flattenDecodeError keeps the first field-level line of a mapstructure error.
func flattenDecodeError(err error) string {
	for _, line := range strings.Split(err.Error(), "\n") {
		line = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "*"))
		if line == "" || strings.HasPrefix(line, "decoding failed") {
			continue
		}
		return line
	}
	return err.Error()
}

func check(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return errs.Config("Invalid config: %v", err)
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return errs.Config(`"%s" parameter is required.`, fe.Field())
	case "min":
		if fe.Kind() == reflect.String {
			return errs.Config(`"%s" parameter must not be empty.`, fe.Field())
		}
		return errs.Config(`"%s" parameter must be at least %s.`, fe.Field(), fe.Param())
	default:
		return errs.Config(`"%s" parameter is invalid (%s).`, fe.Field(), fe.Tag())
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

func derefBool(b *bool, def bool) bool {
	if b == nil {
		return def
	}
	return *b
}
