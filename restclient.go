package restclient

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/loykin/restclient/internal/common"
	"github.com/loykin/restclient/internal/config"
	"github.com/loykin/restclient/internal/constants"
	"github.com/loykin/restclient/internal/fetch"
	"github.com/loykin/restclient/internal/httpc"
)

// PluginParams is one input or output observation record.
type PluginParams = map[string]any

// MappingParams renames the produced field: provisional name to final name.
type MappingParams = map[string]string

// ParameterMetadata describes one input or output parameter.
type ParameterMetadata struct {
	Description string `json:"description,omitempty" yaml:"description,omitempty" mapstructure:"description"`
	Unit        string `json:"unit,omitempty" yaml:"unit,omitempty" mapstructure:"unit"`
	Aggregation string `json:"aggregation-method,omitempty" yaml:"aggregation-method,omitempty" mapstructure:"aggregation-method"`
}

// PluginParametersMetadata is the caller supplied parameter description.
type PluginParametersMetadata struct {
	Inputs  map[string]ParameterMetadata `json:"inputs,omitempty" yaml:"inputs,omitempty" mapstructure:"inputs"`
	Outputs map[string]ParameterMetadata `json:"outputs,omitempty" yaml:"outputs,omitempty" mapstructure:"outputs"`
}

// Metadata is what the plugin reports about itself.
type Metadata struct {
	Kind    string                       `json:"kind" yaml:"kind"`
	Inputs  map[string]ParameterMetadata `json:"inputs,omitempty" yaml:"inputs,omitempty"`
	Outputs map[string]ParameterMetadata `json:"outputs,omitempty" yaml:"outputs,omitempty"`
}

// Config is the validated plugin configuration.
type Config = config.Config

// BasicAuth holds HTTP basic credentials.
type BasicAuth = config.BasicAuth

// Httpc carries transport settings shared by plugins.
type Httpc = httpc.Httpc

// Logger is the structured logger used by the plugin.
type Logger = common.Logger

// ValidateConfig checks a raw configuration without building a plugin.
func ValidateConfig(raw map[string]any) (Config, error) {
	return config.Validate(raw)
}

// Option customizes a Plugin.
type Option func(*Plugin)

// WithLogger sets the logger used for execution logs.
func WithLogger(l *Logger) Option {
	return func(p *Plugin) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithHTTPClient sets the transport settings. Insecure is always taken from
// the plugin configuration.
func WithHTTPClient(h *Httpc) Option {
	return func(p *Plugin) {
		if h != nil {
			p.httpc = *h
		}
	}
}

// WithRecorder reports every execution to r.
func WithRecorder(r Recorder) Option {
	return func(p *Plugin) { p.recorder = r }
}

// Plugin fetches one value per Execute and broadcasts it onto every record.
// It holds no mutable state and is safe for concurrent use.
type Plugin struct {
	cfg        Config
	params     *PluginParametersMetadata
	mapping    MappingParams
	logger     *Logger
	httpc      Httpc
	recorder   Recorder
	dispatcher *fetch.Dispatcher
}

// New validates cfg and returns a ready plugin. Validation errors are
// *Error values of kind KindConfig.
func New(cfg map[string]any, params *PluginParametersMetadata, mapping MappingParams, opts ...Option) (*Plugin, error) {
	valid, err := config.Validate(cfg)
	if err != nil {
		return nil, err
	}
	p := &Plugin{
		cfg:     valid,
		params:  params,
		mapping: copyMapping(mapping),
		logger:  common.GetLogger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.dispatcher = fetch.New(p.httpc.WithInsecure(valid.Insecure).New())
	return p, nil
}

// Metadata reports the plugin kind and the caller's parameter metadata.
func (p *Plugin) Metadata() Metadata {
	md := Metadata{Kind: constants.PluginKind}
	if p.params != nil {
		md.Inputs = p.params.Inputs
		md.Outputs = p.params.Outputs
	}
	return md
}

// Config returns the validated configuration.
func (p *Plugin) Config() Config {
	return p.cfg
}

// Execute issues the configured request once and returns every input record
// extended with the result. Inputs are never modified. On error no records
// are returned.
func (p *Plugin) Execute(ctx context.Context, inputs []PluginParams) ([]PluginParams, error) {
	runID := uuid.NewString()
	logger := p.logger.WithComponent("plugin").WithRun(runID).WithRequest(p.cfg.Method, p.cfg.URL)
	logger.Info("executing plugin", "inputs", len(inputs), "output", p.cfg.Output)

	start := time.Now()
	res, err := p.dispatcher.Do(ctx, p.cfg)
	p.record(ctx, logger, runID, start, res, err)
	if err != nil {
		logger.Error("plugin execution failed", "error", err, "kind", KindOf(err).String())
		return nil, err
	}

	out := Merge(inputs, p.cfg.Output, res.Value, p.mapping)
	logger.Info("plugin executed",
		"status_code", res.StatusCode,
		"outputs", len(out),
		"duration", time.Since(start))
	return out, nil
}

func (p *Plugin) record(ctx context.Context, logger *Logger, runID string, start time.Time, res *fetch.Result, err error) {
	if p.recorder == nil {
		return
	}
	e := Execution{
		RunID:  runID,
		Method: p.cfg.Method,
		URL:    p.cfg.URL,
		Output: OutputName(p.cfg.Output, p.mapping),
		Err:    err,
		RanAt:  start,
	}
	if res != nil {
		e.Method = res.Method
		e.StatusCode = res.StatusCode
		e.Value = res.Value
		e.Body = res.Body
	}
	if rerr := p.recorder.Record(ctx, e); rerr != nil {
		logger.Warn("failed to record execution", "error", rerr)
	}
}

func copyMapping(m MappingParams) MappingParams {
	if len(m) == 0 {
		return nil
	}
	out := make(MappingParams, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
