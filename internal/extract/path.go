package extract

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/vmware-labs/yaml-jsonpath/pkg/yamlpath"
	"gopkg.in/yaml.v3"
)

// Decode converts a response body into plain Go values.
// JSON bodies become maps, slices and scalars (integral numbers as int);
// any other body is returned as a string.
func Decode(body []byte) (any, error) {
	doc, err := parse(body)
	if err != nil {
		return nil, err
	}
	return decodeNode(doc)
}

// Query evaluates expr against body and returns every match in document order.
// Expressions rooted at "$" are JSONPath; anything else is a gjson path.
func Query(body []byte, expr string) ([]any, error) {
	expr = strings.TrimSpace(expr)
	if strings.HasPrefix(expr, "$") {
		return queryJSONPath(body, expr)
	}
	return queryGJSON(body, expr), nil
}

// Select applies the match rule: exactly one match yields the match itself,
// otherwise the whole (possibly empty) match list is the value.
func Select(matches []any) any {
	if len(matches) == 1 {
		return matches[0]
	}
	if matches == nil {
		return []any{}
	}
	return matches
}

func queryJSONPath(body []byte, expr string) ([]any, error) {
	p, err := yamlpath.NewPath(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid path expression %q: %w", expr, err)
	}
	doc, err := parse(body)
	if err != nil {
		return nil, err
	}
	nodes, err := p.Find(doc)
	if err != nil {
		return nil, fmt.Errorf("evaluate %q: %w", expr, err)
	}
	out := make([]any, 0, len(nodes))
	for _, n := range nodes {
		v, err := decodeNode(n)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func queryGJSON(body []byte, expr string) []any {
	res := gjson.GetBytes(body, expr)
	if !res.Exists() {
		return []any{}
	}
	return []any{normalize(res.Value())}
}

// parse builds a yaml node tree for body. JSON is a subset of YAML, so valid
// JSON goes straight through yaml.v3; documents yaml.v3 rejects (duplicate
// keys, for one) are decoded with encoding/json and re-encoded.
func parse(body []byte) (*yaml.Node, error) {
	var doc yaml.Node
	if !json.Valid(body) {
		doc.Kind = yaml.DocumentNode
		doc.Content = []*yaml.Node{{Kind: yaml.ScalarNode, Tag: "!!str", Value: string(body)}}
		return &doc, nil
	}
	if err := yaml.Unmarshal(body, &doc); err == nil {
		return &doc, nil
	}
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, fmt.Errorf("decode response body: %w", err)
	}
	if err := doc.Encode(normalize(v)); err != nil {
		return nil, fmt.Errorf("decode response body: %w", err)
	}
	return &doc, nil
}

func decodeNode(n *yaml.Node) (any, error) {
	var v any
	if err := n.Decode(&v); err != nil {
		return nil, fmt.Errorf("decode matched value: %w", err)
	}
	return v, nil
}

// normalize turns integral float64 values into int, recursively.
func normalize(v any) any {
	switch t := v.(type) {
	case float64:
		if t == math.Trunc(t) && math.Abs(t) < 1<<53 {
			return int(t)
		}
		return t
	case []any:
		for i := range t {
			t[i] = normalize(t[i])
		}
		return t
	case map[string]any:
		for k := range t {
			t[k] = normalize(t[k])
		}
		return t
	default:
		return v
	}
}
