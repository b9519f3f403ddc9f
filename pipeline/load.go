package pipeline

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/viant/apidiff/kerr"
)

// Format selects the document encoding Load parses.
type Format int

const (
	// FormatJSON decodes r as JSON.
	FormatJSON Format = iota
	// FormatYAML decodes r as YAML.
	FormatYAML
)

// wireConfig mirrors Config field-for-field but types each extension set
// as json.RawMessage, deferring the array-vs-legacy-object shape decision
// to decodeExtensionSet.
type wireConfig struct {
	Analyzers       json.RawMessage      `json:"analyzers,omitempty" yaml:"analyzers,omitempty"`
	FilterProviders json.RawMessage      `json:"filters,omitempty" yaml:"filters,omitempty"`
	Transforms      json.RawMessage      `json:"transforms,omitempty" yaml:"transforms,omitempty"`
	Reporters       json.RawMessage      `json:"reporters,omitempty" yaml:"reporters,omitempty"`
	Matchers        json.RawMessage      `json:"matchers,omitempty" yaml:"matchers,omitempty"`
	Blocks          [][]string           `json:"blocks,omitempty" yaml:"blocks,omitempty"`
	CriticalitySet  json.RawMessage      `json:"criticalities,omitempty" yaml:"criticalities,omitempty"`
	SeverityMapping map[string]string    `json:"severityMapping,omitempty" yaml:"severityMapping,omitempty"`
}

// Load parses r in the given format into a validated Config. Each
// extension set (analyzers, filters, transforms, reporters, matchers) may
// be given either as an array of {type, id, configuration} objects, or as
// the legacy shape: a single object keyed by extension id, whose value is
// the {type, configuration} body.
func Load(r io.Reader, format Format) (*Config, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: reading configuration: %v", kerr.ErrConfigurationInvalid, err)
	}

	var wc wireConfig
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(raw, &wc); err != nil {
			return nil, fmt.Errorf("%w: decoding JSON configuration: %v", kerr.ErrConfigurationInvalid, err)
		}
	case FormatYAML:
		var generic map[string]interface{}
		if err := yaml.Unmarshal(raw, &generic); err != nil {
			return nil, fmt.Errorf("%w: decoding YAML configuration: %v", kerr.ErrConfigurationInvalid, err)
		}
		normalized, err := json.Marshal(generic)
		if err != nil {
			return nil, fmt.Errorf("%w: normalizing YAML configuration: %v", kerr.ErrConfigurationInvalid, err)
		}
		if err := json.Unmarshal(normalized, &wc); err != nil {
			return nil, fmt.Errorf("%w: decoding normalized configuration: %v", kerr.ErrConfigurationInvalid, err)
		}
	default:
		return nil, fmt.Errorf("%w: unknown configuration format", kerr.ErrConfigurationInvalid)
	}

	cfg := &Config{Blocks: wc.Blocks}

	var decodeErr error
	cfg.Analyzers, decodeErr = decodeExtensionSet(wc.Analyzers)
	if decodeErr != nil {
		return nil, fmt.Errorf("%w: analyzers: %v", kerr.ErrConfigurationInvalid, decodeErr)
	}
	cfg.FilterProviders, decodeErr = decodeExtensionSet(wc.FilterProviders)
	if decodeErr != nil {
		return nil, fmt.Errorf("%w: filters: %v", kerr.ErrConfigurationInvalid, decodeErr)
	}
	cfg.Transforms, decodeErr = decodeExtensionSet(wc.Transforms)
	if decodeErr != nil {
		return nil, fmt.Errorf("%w: transforms: %v", kerr.ErrConfigurationInvalid, decodeErr)
	}
	cfg.Reporters, decodeErr = decodeExtensionSet(wc.Reporters)
	if decodeErr != nil {
		return nil, fmt.Errorf("%w: reporters: %v", kerr.ErrConfigurationInvalid, decodeErr)
	}
	cfg.Matchers, decodeErr = decodeExtensionSet(wc.Matchers)
	if decodeErr != nil {
		return nil, fmt.Errorf("%w: matchers: %v", kerr.ErrConfigurationInvalid, decodeErr)
	}

	if len(wc.CriticalitySet) > 0 {
		if err := json.Unmarshal(wc.CriticalitySet, &cfg.CriticalitySet); err != nil {
			return nil, fmt.Errorf("%w: criticalities: %v", kerr.ErrConfigurationInvalid, err)
		}
	}
	sevMapping, err := decodeSeverityMapping(wc.SeverityMapping)
	if err != nil {
		return nil, fmt.Errorf("%w: severityMapping: %v", kerr.ErrConfigurationInvalid, err)
	}
	cfg.SeverityMapping = sevMapping

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// legacyExtensionBody is one value of the legacy object-keyed-by-id shape.
type legacyExtensionBody struct {
	Type          string          `json:"type"`
	Configuration json.RawMessage `json:"configuration,omitempty"`
}

// decodeExtensionSet accepts raw JSON in either the array-of-extensions
// shape or the legacy object-keyed-by-id shape, normalizing both into a
// slice of ExtensionConfig.
func decodeExtensionSet(raw json.RawMessage) ([]ExtensionConfig, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	trimmed := skipSpace(raw)
	if len(trimmed) == 0 {
		return nil, nil
	}
	switch trimmed[0] {
	case '[':
		var out []ExtensionConfig
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil, err
		}
		return out, nil
	case '{':
		var legacy map[string]legacyExtensionBody
		if err := json.Unmarshal(raw, &legacy); err != nil {
			return nil, err
		}
		out := make([]ExtensionConfig, 0, len(legacy))
		for id, body := range legacy {
			out = append(out, ExtensionConfig{Type: body.Type, ID: id, Options: body.Configuration})
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected a JSON array or object, got %q", string(trimmed[:1]))
	}
}

func skipSpace(b []byte) []byte {
	i := 0
	for i < len(b) {
		switch b[i] {
		case ' ', '\t', '\n', '\r':
			i++
		default:
			return b[i:]
		}
	}
	return nil
}
