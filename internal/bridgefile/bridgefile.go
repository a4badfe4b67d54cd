// Package bridgefile reads and writes the per-project marker file a running
// daemon leaves at <project>/.unityctl/bridge.json, letting a second daemon
// invocation (or a CLI client) discover whether one is already running.
package bridgefile

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// Dir is the fixed subdirectory, relative to a project root, the marker
// file lives in.
const Dir = ".unityctl"

// fileName is the marker file itself.
const fileName = "bridge.json"

// Info is the marker file's contents.
type Info struct {
	ProjectID string `json:"projectId"`
	Port      int    `json:"port"`
	PID       int    `json:"pid"`
}

// Path returns the marker file's full path for projectPath.
func Path(projectPath string) string {
	return filepath.Join(projectPath, Dir, fileName)
}

// Write creates <project>/.unityctl, if necessary, and writes info to the
// marker file, overwriting anything already there.
func Write(projectPath string, info Info) error {
	dir := filepath.Join(projectPath, Dir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("bridgefile: create %s: %w", dir, err)
	}

	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return fmt.Errorf("bridgefile: encode: %w", err)
	}

	if err := os.WriteFile(Path(projectPath), data, 0o644); err != nil {
		return fmt.Errorf("bridgefile: write: %w", err)
	}
	return nil
}

// Read loads the marker file for projectPath. It returns an error wrapping
// os.ErrNotExist when no daemon has ever run against this project.
func Read(projectPath string) (Info, error) {
	var info Info
	data, err := os.ReadFile(Path(projectPath))
	if err != nil {
		return info, err
	}
	if err := json.Unmarshal(data, &info); err != nil {
		return info, fmt.Errorf("bridgefile: decode %s: %w", Path(projectPath), err)
	}
	return info, nil
}

// Remove deletes the marker file, ignoring a not-exist error.
func Remove(projectPath string) error {
	err := os.Remove(Path(projectPath))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Probe reports whether info describes a bridge daemon that is still alive
// and answering on /health. A short timeout keeps a stale marker file (left
// behind by a crashed process) from stalling a new daemon's startup.
func Probe(info Info) bool {
	client := http.Client{Timeout: 500 * time.Millisecond}
	resp, err := client.Get(fmt.Sprintf("http://127.0.0.1:%d/health", info.Port))
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
