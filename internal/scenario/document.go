// Package scenario runs single-request end-to-end device protocol
// checks as data files rather than Go test functions: a scenario is a
// YAML transcript (one host request, one expected device reply)
// validated against a JSON Schema before it's ever executed, so a typo'd
// fixture fails fast with a schema error instead of a confusing runtime
// panic deep in the runner.
package scenario

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Request describes the single frame a scenario sends to the device.
type Request struct {
	Endpoint string `yaml:"endpoint" json:"endpoint"`
	BodyHex  string `yaml:"body_hex" json:"body_hex"`
	Touch    bool   `yaml:"touch" json:"touch"`
}

// Expect describes the frame the device must reply with. BodyHex
// requires an exact match; BodyPrefixHex matches only the given leading
// bytes, for responses whose trailing bytes are undefined and shouldn't
// be asserted on.
type Expect struct {
	Length        int    `yaml:"length" json:"length"`
	BodyHex       string `yaml:"body_hex,omitempty" json:"body_hex,omitempty"`
	BodyPrefixHex string `yaml:"body_prefix_hex,omitempty" json:"body_prefix_hex,omitempty"`
}

// Document is one end-to-end scenario transcript.
type Document struct {
	Name    string  `yaml:"name" json:"name"`
	Request Request `yaml:"request" json:"request"`
	Expect  Expect  `yaml:"expect" json:"expect"`
}

// LoadDocument reads and schema-validates a scenario file.
func LoadDocument(path string) (*Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scenario: read %s: %w", path, err)
	}

	var doc Document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("scenario: parse %s: %w", path, err)
	}

	if err := Validate(&doc); err != nil {
		return nil, fmt.Errorf("scenario: %s failed schema validation: %w", path, err)
	}

	return &doc, nil
}
