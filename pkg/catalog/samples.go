package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hintlane/clarify-engine/pkg/models"
)

// sampleFile is the on-disk shape of the keyed sample results source.
type sampleFile struct {
	Results []sampleResult `json:"results"`
}

// sampleResult is one previously sampled result set for a question id.
type sampleResult struct {
	QuestionID string       `json:"questionId"`
	RowCount   int          `json:"rowCount"`
	Items      []optionItem `json:"items"`
}

func (s *sampleResult) options() []models.ClarificationOption {
	if len(s.Items) == 0 {
		return nil
	}
	options := make([]models.ClarificationOption, 0, len(s.Items))
	for _, item := range s.Items {
		options = append(options, item.toOption())
	}
	return options
}

// loadSamples reads the optional keyed sample source. A missing file yields
// an empty map; a present but unreadable file is an error since it indicates
// a broken deployment rather than an absent optional input.
func loadSamples(path string) (map[string]*sampleResult, error) {
	if path == "" {
		return map[string]*sampleResult{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]*sampleResult{}, nil
		}
		return nil, err
	}

	var payload sampleFile
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, err
	}

	results := make(map[string]*sampleResult, len(payload.Results))
	for i := range payload.Results {
		entry := &payload.Results[i]
		if entry.QuestionID == "" {
			continue
		}
		results[entry.QuestionID] = entry
	}
	return results, nil
}

// WriteCompiled persists the compiled dataset as indented JSON for
// inspection. This is a convenience only; nothing reads the file back.
func WriteCompiled(dataset *models.ClarificationDataset, path string) error {
	data, err := json.MarshalIndent(dataset, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode compiled dataset: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write compiled dataset to %s: %w", path, err)
	}
	return nil
}
