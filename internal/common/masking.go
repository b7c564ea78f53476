package common

import (
	"log/slog"
	"regexp"
	"strings"
)

// MaskedValue replaces every sensitive value.
const MaskedValue = "***MASKED***"

// SensitivePattern represents a pattern to detect and mask sensitive information
type SensitivePattern struct {
	Name        string
	Regex       *regexp.Regexp
	Replacement string
	Keys        []string // attribute keys masked outright (case-insensitive)
}

// DefaultSensitivePatterns covers the credentials a REST call may carry:
// basic-auth passwords, bearer tokens and raw Authorization headers.
var DefaultSensitivePatterns = []SensitivePattern{
	{
		Name:        "password",
		Regex:       regexp.MustCompile(`(?i)("?(?:password|passwd|pwd)"?\s*[:=]\s*)"?[^"',}\]\s]+"?`),
		Replacement: `${1}"` + MaskedValue + `"`,
		Keys:        []string{"password", "passwd", "pwd"},
	},
	{
		Name:        "token",
		Regex:       regexp.MustCompile(`(?i)("?(?:bearer[_-]?tokk?en|access[_-]?token|token)"?\s*[:=]\s*)"?[^"',}\]\s]+"?`),
		Replacement: `${1}"` + MaskedValue + `"`,
		Keys:        []string{"token", "bearer-tokken", "bearer-token", "bearer_token", "access_token"},
	},
	{
		Name:        "bearer",
		Regex:       regexp.MustCompile(`(?i)Bearer\s+[A-Za-z0-9\-._~+/]+=*`),
		Replacement: "Bearer " + MaskedValue,
	},
	{
		Name:        "basic",
		Regex:       regexp.MustCompile(`(?i)Basic\s+[A-Za-z0-9+/]+=*`),
		Replacement: "Basic " + MaskedValue,
	},
	{
		Name: "authorization",
		Keys: []string{"authorization"},
	},
}

// Masker handles masking of sensitive information in logs
type Masker struct {
	patterns []SensitivePattern
	enabled  bool
}

// NewMasker creates a new masker with default patterns
func NewMasker() *Masker {
	return &Masker{patterns: DefaultSensitivePatterns, enabled: true}
}

// SetEnabled enables or disables masking
func (m *Masker) SetEnabled(enabled bool) {
	m.enabled = enabled
}

// IsEnabled returns whether masking is enabled
func (m *Masker) IsEnabled() bool {
	return m.enabled
}

// IsSensitiveKey reports whether values stored under key are always masked.
func (m *Masker) IsSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	for _, p := range m.patterns {
		for _, k := range p.Keys {
			if lower == k {
				return true
			}
		}
	}
	return false
}

// MaskString masks sensitive information in a string
func (m *Masker) MaskString(input string) string {
	if !m.enabled {
		return input
	}
	out := input
	for _, p := range m.patterns {
		if p.Regex == nil {
			continue
		}
		out = p.Regex.ReplaceAllString(out, p.Replacement)
	}
	return out
}

// MaskValue masks sensitive information based on key-value context
func (m *Masker) MaskValue(key string, value any) any {
	if !m.enabled {
		return value
	}
	if m.IsSensitiveKey(key) {
		return MaskedValue
	}
	if s, ok := value.(string); ok {
		return m.MaskString(s)
	}
	if e, ok := value.(error); ok && e != nil {
		return m.MaskString(e.Error())
	}
	return value
}

// MaskAttr masks a slog attribute, recursing into groups.
func (m *Masker) MaskAttr(a slog.Attr) slog.Attr {
	if !m.enabled {
		return a
	}
	if a.Value.Kind() == slog.KindGroup {
		group := a.Value.Group()
		masked := make([]any, 0, len(group))
		for _, g := range group {
			masked = append(masked, m.MaskAttr(g))
		}
		return slog.Group(a.Key, masked...)
	}
	if m.IsSensitiveKey(a.Key) {
		return slog.String(a.Key, MaskedValue)
	}
	switch v := a.Value.Any().(type) {
	case string:
		return slog.String(a.Key, m.MaskString(v))
	case error:
		return slog.String(a.Key, m.MaskString(v.Error()))
	}
	return a
}

var globalMasker = NewMasker()

// MaskSensitiveData masks sensitive data using the global masker
func MaskSensitiveData(input string) string {
	return globalMasker.MaskString(input)
}

// EnableMasking enables/disables global masking
func EnableMasking(enabled bool) {
	globalMasker.SetEnabled(enabled)
}
