package javascript

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/matzehuels/peerscan/pkg/errors"
)

// LockfileName is the conventional lockfile file name.
const LockfileName = "package-lock.json"

const nodeModules = "node_modules/"

// Lockfile is a package-lock.json document.
type Lockfile struct {
	Name     string           `json:"name"`
	Version  int              `json:"lockfileVersion"`
	Packages map[string]Entry `json:"packages"`
}

// Entry is one installed package in the flat packages map.
type Entry struct {
	Name                 string            `json:"name,omitempty"`
	Version              string            `json:"version"`
	Resolved             string            `json:"resolved,omitempty"`
	Integrity            string            `json:"integrity,omitempty"`
	Dev                  bool              `json:"dev,omitempty"`
	Optional             bool              `json:"optional,omitempty"`
	Link                 bool              `json:"link,omitempty"`
	Dependencies         map[string]string `json:"dependencies,omitempty"`
	DevDependencies      map[string]string `json:"devDependencies,omitempty"`
	OptionalDependencies map[string]string `json:"optionalDependencies,omitempty"`
	PeerDependencies     map[string]string `json:"peerDependencies,omitempty"`
	PeerDependenciesMeta map[string]struct {
		Optional bool `json:"optional"`
	} `json:"peerDependenciesMeta,omitempty"`
}

// RequiredPeers returns the entry's peer dependencies minus those marked
// optional in peerDependenciesMeta.
func (e Entry) RequiredPeers() map[string]string {
	if len(e.PeerDependencies) == 0 {
		return nil
	}
	out := make(map[string]string, len(e.PeerDependencies))
	for name, rng := range e.PeerDependencies {
		if e.PeerDependenciesMeta[name].Optional {
			continue
		}
		out[name] = rng
	}
	return out
}

// ParseLockfile decodes a package-lock.json document. It does not check the
// lockfile version.
func ParseLockfile(data []byte) (*Lockfile, error) {
	var l Lockfile
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "parse %s", LockfileName)
	}
	return &l, nil
}

// ReadLockfile reads and decodes the lockfile at path.
func ReadLockfile(path string) (*Lockfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, readError(path, err)
	}
	return ParseLockfile(data)
}

// NameFromPath returns the package name installed at path, taken from the
// last node_modules segment: "node_modules/a/node_modules/@s/b" gives "@s/b".
// The root path "" and paths outside node_modules (workspace links) give "".
func NameFromPath(path string) string {
	i := lastPair(path)
	if i < 0 {
		return ""
	}
	return path[i+len(nodeModules):]
}

// ParentPath strips the last node_modules/<name> pair from path. Direct
// installs have parent "". The root has no parent and returns ("", false).
func ParentPath(path string) (string, bool) {
	i := lastPair(path)
	if i < 0 {
		return "", false
	}
	return strings.TrimSuffix(path[:i], "/"), true
}

// IsDirect reports whether path is a top-level install, i.e. exactly one
// node_modules/<name> pair.
func IsDirect(path string) bool {
	parent, ok := ParentPath(path)
	return ok && parent == ""
}

// lastPair returns the offset of the last "node_modules/" segment in path,
// or -1. Only whole segments count, so a scope such as "@x-node_modules" is
// not mistaken for a boundary.
func lastPair(path string) int {
	for end := len(path); end > 0; {
		i := strings.LastIndex(path[:end], nodeModules)
		if i < 0 {
			return -1
		}
		if i == 0 || path[i-1] == '/' {
			return i
		}
		end = i
	}
	return -1
}

// InstallPath returns where dep would be installed beneath parent.
func InstallPath(parent, dep string) string {
	if parent == "" {
		return nodeModules + dep
	}
	return parent + "/" + nodeModules + dep
}
