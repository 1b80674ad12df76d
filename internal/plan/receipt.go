package plan

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tabsplit-dev/tabsplit/internal/model"
)

// LoadReceipt reads a verified receipt JSON file and validates it.
func LoadReceipt(path string) (model.Receipt, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Receipt{}, fmt.Errorf("reading receipt: %w", err)
	}
	var r model.Receipt
	if err := json.Unmarshal(data, &r); err != nil {
		return model.Receipt{}, fmt.Errorf("parsing receipt: %w", err)
	}
	if err := r.Validate(); err != nil {
		return model.Receipt{}, fmt.Errorf("invalid receipt %s: %w", path, err)
	}
	return r, nil
}

// SaveReceipt writes a receipt as indented JSON.
func SaveReceipt(path string, r model.Receipt) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling receipt: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing receipt: %w", err)
	}
	return nil
}

// SaveCandidate writes an unverified extraction result as indented JSON,
// Missing fields and all, for the human to correct.
func SaveCandidate(path string, c model.CandidateReceipt) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling candidate receipt: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing candidate receipt: %w", err)
	}
	return nil
}
