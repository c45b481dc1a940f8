package core

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/huangsam/pulse/internal/contract"
	"github.com/huangsam/pulse/schema"
	"gopkg.in/yaml.v3"
)

// ExecuteAnalyze reads an operation log and prints ranked recommendations.
// The log is ordered most recent first; "-" reads JSON from stdin.
func ExecuteAnalyze(_ context.Context, cfg *contract.Config, opsFile string) error {
	var ops []schema.OperationRecord
	if err := decodeFile(opsFile, &ops); err != nil {
		return fmt.Errorf("failed to read operations: %w", err)
	}
	return writer.WriteRecommendations(AnalyzeOperations(ops), cfg)
}

// decodeFile decodes a JSON or YAML file into v, picking the format by extension.
func decodeFile(path string, v any) error {
	if path == "" {
		return fmt.Errorf("an input file is required")
	}

	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()
		r = f
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.NewDecoder(r).Decode(v)
	default:
		return json.NewDecoder(r).Decode(v)
	}
}
