// Package extract turns OCR-recognized receipt text into a candidate
// structured receipt using a locally hosted language model. One fixed
// prompt per field instructs the model to emit an empty value when a field
// cannot be determined; undetermined fields are flagged, never guessed.
// Nothing here is trusted: the output must pass through human correction
// and Verify before it can feed the allocation engine.
package extract

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed prompts.yaml
var defaultPrompts []byte

// placeholder is substituted with the raw receipt text in every template.
const placeholder = "[[ receipt_string ]]"

// Prompts maps prompt names to instruction templates.
type Prompts map[string]string

// LoadPrompts reads prompt templates from a YAML file, or returns the
// embedded defaults when path is empty.
func LoadPrompts(path string) (Prompts, error) {
	data := defaultPrompts
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading prompts: %w", err)
		}
	}
	var p Prompts
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing prompts: %w", err)
	}
	return p, nil
}

// Render substitutes the receipt text into the named template.
func (p Prompts) Render(name, receiptText string) (string, error) {
	tmpl, ok := p[name]
	if !ok {
		return "", fmt.Errorf("unknown prompt %q", name)
	}
	return strings.ReplaceAll(tmpl, placeholder, receiptText), nil
}
