package javascript

import "path/filepath"

// Project is a directory holding a manifest and its lockfile.
type Project struct {
	Dir      string
	Manifest *Manifest
	Lockfile *Lockfile
}

// LoadProject reads package.json and package-lock.json from dir.
func LoadProject(dir string) (*Project, error) {
	m, err := ReadManifest(filepath.Join(dir, ManifestFile))
	if err != nil {
		return nil, err
	}
	l, err := ReadLockfile(filepath.Join(dir, LockfileName))
	if err != nil {
		return nil, err
	}
	return &Project{Dir: dir, Manifest: m, Lockfile: l}, nil
}

// Name returns the manifest name, falling back to the directory name.
func (p *Project) Name() string {
	if p.Manifest != nil && p.Manifest.Name != "" {
		return p.Manifest.Name
	}
	abs, err := filepath.Abs(p.Dir)
	if err != nil {
		return p.Dir
	}
	return filepath.Base(abs)
}
