// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xeipuuv/gojsonschema"
)

// LoadRegistry reads a registry file, validates it against the document
// schema and decodes it.
func LoadRegistry(path string) (*PlatformRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse validates and decodes a registry document.
func Parse(data []byte) (*PlatformRegistry, error) {
	if problems, err := ValidateRegistry(data); err != nil {
		return nil, err
	} else if len(problems) > 0 {
		return nil, &ValidationError{Problems: problems}
	}
	var reg PlatformRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("decode registry: %w", err)
	}
	return &reg, nil
}

// ValidateRegistry checks raw against the document schema and returns one
// message per violation. A non-nil error means the document could not be
// evaluated at all (for example it is not JSON).
func ValidateRegistry(raw []byte) ([]string, error) {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(documentSchema),
		gojsonschema.NewBytesLoader(raw),
	)
	if err != nil {
		return nil, fmt.Errorf("validate registry: %w", err)
	}
	if result.Valid() {
		return nil, nil
	}
	problems := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		problems = append(problems, fmt.Sprintf("%s: %s", desc.Field(), desc.Description()))
	}
	return problems, nil
}

// SaveRegistry writes reg to path as indented JSON.
func SaveRegistry(path string, reg *PlatformRegistry) error {
	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// ValidationError carries every schema violation of a registry document.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("registry schema validation failed: %d problem(s), first: %s", len(e.Problems), e.Problems[0])
}
