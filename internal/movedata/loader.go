package movedata

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed defaults/extra_moves.yaml
var defaultExtraMovesYAML []byte

// maxPayload caps the size of a fetched move table.
const maxPayload = 4 << 20

// Default returns the move data bundled with the client.
func Default() (*ExtraMoves, error) {
	return ParseYAML(defaultExtraMovesYAML)
}

// ParseJSON decodes the /api/extra-moves JSON payload.
func ParseJSON(data []byte) (*ExtraMoves, error) {
	var em ExtraMoves
	if err := json.Unmarshal(data, &em); err != nil {
		return nil, fmt.Errorf("movedata: cannot parse JSON: %w", err)
	}
	return &em, nil
}

// ParseYAML decodes the same structure written as YAML.
func ParseYAML(data []byte) (*ExtraMoves, error) {
	var em ExtraMoves
	if err := yaml.Unmarshal(data, &em); err != nil {
		return nil, fmt.Errorf("movedata: cannot parse YAML: %w", err)
	}
	return &em, nil
}

// LoadFile reads move data from a .json, .yaml or .yml file.
func LoadFile(path string) (*ExtraMoves, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("movedata: failed to read %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return ParseJSON(data)
	case ".yaml", ".yml":
		return ParseYAML(data)
	default:
		return nil, fmt.Errorf("movedata: unsupported file type %q", filepath.Ext(path))
	}
}

// Fetch downloads the move data from the engine's HTTP endpoint.
func Fetch(ctx context.Context, client *http.Client, url string) (*ExtraMoves, error) {
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("movedata: cannot build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("movedata: fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("movedata: fetch %s: unexpected status %s", url, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPayload))
	if err != nil {
		return nil, fmt.Errorf("movedata: read body: %w", err)
	}
	return ParseJSON(data)
}
