package javascript

import (
	"encoding/json"
	"os"

	"github.com/matzehuels/peerscan/pkg/errors"
)

// ManifestFile is the conventional manifest file name.
const ManifestFile = "package.json"

// Manifest is the subset of package.json the analyzer reads.
type Manifest struct {
	Name                 string            `json:"name"`
	Version              string            `json:"version"`
	Dependencies         map[string]string `json:"dependencies,omitempty"`
	DevDependencies      map[string]string `json:"devDependencies,omitempty"`
	PeerDependencies     map[string]string `json:"peerDependencies,omitempty"`
	OptionalDependencies map[string]string `json:"optionalDependencies,omitempty"`
}

// IsDev reports whether name is listed in devDependencies. A name that is
// also a production dependency still counts.
func (m *Manifest) IsDev(name string) bool {
	if m == nil {
		return false
	}
	_, ok := m.DevDependencies[name]
	return ok
}

// AllDependencies returns dependencies and devDependencies merged. A name
// declared in both keeps its production range.
func (m *Manifest) AllDependencies() map[string]string {
	out := make(map[string]string, len(m.Dependencies)+len(m.DevDependencies))
	for name, rng := range m.DevDependencies {
		out[name] = rng
	}
	for name, rng := range m.Dependencies {
		out[name] = rng
	}
	return out
}

// ParseManifest decodes a package.json document.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "parse %s", ManifestFile)
	}
	return &m, nil
}

// ReadManifest reads and decodes the manifest at path.
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, readError(path, err)
	}
	return ParseManifest(data)
}

func readError(path string, err error) error {
	if os.IsNotExist(err) {
		return errors.Wrap(errors.ErrCodeFileNotFound, err, "%s not found", path)
	}
	return errors.Wrap(errors.ErrCodeInvalidManifest, err, "read %s", path)
}
