package riddles

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/robalobadob/riddler/assets"
)

// Parse decodes a YAML list of {riddle, answer} mappings.
// Surrounding whitespace is trimmed; validation is left to New.
func Parse(data []byte) ([]Entry, error) {
	var out []Entry
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("parse riddles: %w", err)
	}
	for i := range out {
		out[i].Prompt = strings.TrimSpace(out[i].Prompt)
		out[i].Answer = strings.TrimSpace(out[i].Answer)
	}
	return out, nil
}

// Embedded returns the entries shipped in assets/riddles.yaml.
func Embedded() ([]Entry, error) {
	return Parse(assets.RiddlesYAML)
}
