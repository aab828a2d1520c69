package project

import (
	"bytes"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"igloo/pkg/env"
	"igloo/pkg/errors"
	"igloo/pkg/fsutil"
	"igloo/pkg/logger"
	"igloo/pkg/manifest"
)

// projectFile is the on-disk record at <root>/.igloo/<name>.toml.
type projectFile struct {
	Name    string         `toml:"name"`
	ID      string         `toml:"id"`
	Created time.Time      `toml:"created"`
	Targets []targetRecord `toml:"target"`
}

type targetRecord struct {
	Name      string `toml:"name"`
	MakeTable string `toml:"make"`
	Manifest  string `toml:"manifest"`
}

// FilePath is the project file of the project named name rooted at root.
func FilePath(root, name string) string {
	return filepath.Join(root, MetaDir, name+".toml")
}

// Exists reports whether root already holds the project file for name.
func Exists(root, name string) bool {
	_, err := os.Stat(FilePath(root, name))
	return err == nil
}

// Save writes the project file.
func (p *Project) Save() (fsutil.WriteResult, error) {
	pf := projectFile{Name: p.Name, ID: p.ID, Created: p.Created}
	for _, d := range p.Targets {
		pf.Targets = append(pf.Targets, targetRecord{
			Name:      d.Name,
			MakeTable: d.Entry.MakeTable,
			Manifest:  d.Entry.ManifestFile,
		})
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(pf); err != nil {
		return fsutil.WriteResult{}, errors.Wrap(err, "failed to encode project file")
	}
	return fsutil.Rewrite(FilePath(p.Root, p.Name), buf.Bytes())
}

// Load reads the project rooted at root and re-resolves every recorded
// target against the current catalogs. A target whose recorded make table
// or profile no longer matches the catalog fails with ErrUnknown.
func Load(e env.Environment, c *manifest.Catalogs, root string) (*Project, error) {
	path, err := findProjectFile(root)
	if err != nil {
		return nil, err
	}

	var pf projectFile
	md, err := toml.DecodeFile(path, &pf)
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "failed to parse project file %s", path), errors.ErrUnknown)
	}
	for _, key := range md.Undecoded() {
		logger.Logger.Warnw("unknown key in project file", "file", path, "key", key.String())
	}
	if pf.Name == "" {
		return nil, errors.Wrapf(errors.ErrInvalidProjectName, "project file %s has no name", path)
	}
	if len(pf.Targets) == 0 {
		return nil, errors.Wrapf(errors.ErrUnknown, "project file %s lists no targets", path)
	}

	p := &Project{
		Name:     pf.Name,
		Root:     root,
		ID:       pf.ID,
		Created:  pf.Created,
		env:      e,
		catalogs: c,
	}
	for _, rec := range pf.Targets {
		d, err := p.AddTarget(rec.Name)
		if err != nil {
			return nil, errors.Wrapf(err, "project file %s", path)
		}
		if d.Entry.MakeTable != rec.MakeTable || d.Entry.ManifestFile != rec.Manifest {
			return nil, errors.WithHint(
				errors.Wrapf(errors.ErrUnknown,
					"target %s was created with make table %q and profile %q, the catalog now says %q and %q",
					rec.Name, rec.MakeTable, rec.Manifest, d.Entry.MakeTable, d.Entry.ManifestFile),
				"remove the target from the project file and add it again")
		}
	}
	return p, nil
}

// findProjectFile returns the single project file under root/.igloo.
func findProjectFile(root string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(root, MetaDir, "*.toml"))
	if err != nil {
		return "", errors.Wrap(err, "failed to search for project file")
	}
	switch len(matches) {
	case 0:
		return "", errors.Wrapf(errors.ErrConfigNotFound, "no project file in %s", filepath.Join(root, MetaDir))
	case 1:
		return matches[0], nil
	default:
		return "", errors.Wrapf(errors.ErrUnknown, "more than one project file in %s", filepath.Join(root, MetaDir))
	}
}

// FindRoot walks up from start to the nearest directory holding a project
// file.
func FindRoot(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", errors.Wrap(err, "failed to get absolute path")
	}

	for {
		if info, err := os.Stat(filepath.Join(dir, MetaDir)); err == nil && info.IsDir() {
			if _, err := findProjectFile(dir); err == nil {
				return dir, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", errors.WithHint(
		errors.Wrapf(errors.ErrConfigNotFound, "%s is not inside an igloo project", start),
		"run 'igloo new <name> --target <target>' first")
}
