package deps

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// FingerprintFile is stored inside the environment so it disappears with it.
const FingerprintFile = ".wakeboot-deps.json"

// Fingerprint records the manifest that was last installed successfully.
type Fingerprint struct {
	ManifestHash string    `json:"manifest_hash"`
	InstalledAt  time.Time `json:"installed_at"`
}

// HashManifest returns a sha256 digest of the manifest contents.
func HashManifest(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return fmt.Sprintf("sha256:%x", h.Sum(nil)), nil
}

// LoadFingerprint reads the stored fingerprint. A missing or corrupt file
// returns an empty fingerprint without error.
func LoadFingerprint(envRoot string) Fingerprint {
	data, err := os.ReadFile(filepath.Join(envRoot, FingerprintFile))
	if err != nil {
		return Fingerprint{}
	}
	var fp Fingerprint
	if err := json.Unmarshal(data, &fp); err != nil {
		return Fingerprint{}
	}
	return fp
}

// Save writes the fingerprint atomically into the environment.
func (fp Fingerprint) Save(envRoot string) error {
	path := filepath.Join(envRoot, FingerprintFile)
	data, err := json.MarshalIndent(fp, "", "  ")
	if err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
