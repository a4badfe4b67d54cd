package bridge

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
)

// ComputeProjectID derives a short, stable identifier for a project
// directory. It is deterministic across daemon restarts for the same path,
// so a CLI client can confirm it talked to the bridge for the project it
// expected rather than a stale one left over on the same port.
func ComputeProjectID(projectPath string) string {
	abs, err := filepath.Abs(projectPath)
	if err != nil {
		abs = projectPath
	}
	sum := sha256.Sum256([]byte(filepath.Clean(abs)))
	return hex.EncodeToString(sum[:])[:12]
}
