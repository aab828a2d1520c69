package target

import (
	"os"
	"path/filepath"

	"igloo/pkg/env"
	"igloo/pkg/errors"
	"igloo/pkg/fsutil"
	"igloo/pkg/logger"
	"igloo/pkg/manifest"
)

// Descriptor is the resolved configuration of one build target. It is built
// once per target and not modified afterwards.
type Descriptor struct {
	// Name is the target identifier
	Name string
	// Root is <project>/.igloo/target/<name>
	Root string
	// Entry is the catalog row the descriptor was resolved from
	Entry Entry
	// Vars holds the make variables from the target's make table
	Vars manifest.Table
	// Links maps ESF link names to support file paths
	Links manifest.Table
	// Includes lists the headers the aggregating header pulls in
	Includes []string
	// Debug configures the flash tool; nil when the profile has none
	Debug *DebugConfig
}

// From resolves a make table and a profile file into a Descriptor rooted at
// root. A missing make table or profile is a catalog inconsistency and fails
// with ErrUnknown.
func From(root string, e env.Environment, makeCatalog *manifest.Store, name, makeTable, manifestFile string) (*Descriptor, error) {
	vars, ok := makeCatalog.Table(makeTable)
	if !ok {
		return nil, errors.Wrapf(errors.ErrUnknown, "make table %q for target %q not found", makeTable, name)
	}

	p, err := loadProfile(profilePath(e.ProfileDir(), manifestFile))
	if err != nil {
		return nil, err
	}
	if p.Name != "" && !sameName(p.Name, name) {
		return nil, errors.Wrapf(errors.ErrUnknown,
			"profile %s declares target %q but the catalog resolved %q", manifestFile, p.Name, name)
	}

	return &Descriptor{
		Name: name,
		Root: root,
		Entry: Entry{
			Name:         name,
			MakeTable:    makeTable,
			ManifestFile: manifestFile,
		},
		Vars:     vars,
		Links:    p.links(),
		Includes: p.Includes,
		Debug:    p.Debug,
	}, nil
}

// FromEntry is From for a resolved catalog entry.
func FromEntry(root string, e env.Environment, makeCatalog *manifest.Store, entry Entry) (*Descriptor, error) {
	return From(root, e, makeCatalog, entry.Name, entry.MakeTable, entry.ManifestFile)
}

// Generate creates the target's directory.
func (d *Descriptor) Generate() error {
	return fsutil.EnsureDir(d.Root)
}

// PopulateLinks symlinks the profile's support files into esfLinkDir. A
// scalar link becomes esfLinkDir/<name>; a list link becomes a directory
// esfLinkDir/<name> holding one link per element. Existing links are left
// in place.
func (d *Descriptor) PopulateLinks(esfDir, esfLinkDir string) ([]string, error) {
	var created []string
	for _, name := range d.Links.Keys() {
		v, _ := d.Links.Get(name)
		if !v.IsList() {
			dst := filepath.Join(esfLinkDir, name)
			ok, err := link(filepath.Join(esfDir, v.String()), dst)
			if err != nil {
				return created, err
			}
			if ok {
				created = append(created, dst)
			}
			continue
		}

		dir := filepath.Join(esfLinkDir, name)
		if err := fsutil.EnsureDir(dir); err != nil {
			return created, err
		}
		for _, item := range v.Items() {
			if item == "" {
				continue
			}
			dst := filepath.Join(dir, filepath.Base(item))
			ok, err := link(filepath.Join(esfDir, item), dst)
			if err != nil {
				return created, err
			}
			if ok {
				created = append(created, dst)
			}
		}
	}
	return created, nil
}

// link creates dst -> src. It reports false without error when dst exists.
func link(src, dst string) (bool, error) {
	if _, err := os.Lstat(dst); err == nil {
		logger.Logger.Infow("link already exists", "path", dst)
		return false, nil
	}
	if _, err := os.Stat(src); err != nil {
		logger.Logger.Warnw("support file missing, linking anyway", "path", src)
	}
	if err := os.Symlink(src, dst); err != nil {
		return false, errors.Wrapf(err, "failed to link %s", dst)
	}
	return true, nil
}
