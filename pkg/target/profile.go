package target

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"igloo/pkg/errors"
	"igloo/pkg/manifest"
)

// DebugConfig selects the debug probe and chip scripts for the flash tool.
type DebugConfig struct {
	Interface    string `toml:"interface"`
	Target       string `toml:"target"`
	Transport    string `toml:"transport"`
	AdapterSpeed int    `toml:"adapter_speed"`
	GDBPort      int    `toml:"gdb_port"`
}

// profile is the on-disk target profile named by the target catalog.
type profile struct {
	// Name, when set, must match the catalog target name
	Name     string         `toml:"name"`
	Links    map[string]any `toml:"links"`
	Includes []string       `toml:"includes"`
	Debug    *DebugConfig   `toml:"debug"`
}

// profilePath locates a profile file; names without an extension get .toml.
func profilePath(dir, file string) string {
	if filepath.Ext(file) == "" {
		file += ".toml"
	}
	return filepath.Join(dir, file)
}

// loadProfile decodes a profile, rejecting unknown keys.
func loadProfile(path string) (*profile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "target profile %s", path), errors.ErrUnknown)
	}
	defer f.Close()

	var p profile
	decoder := toml.NewDecoder(f)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&p); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return nil, errors.Wrapf(errors.ErrUnknown, "target profile %s: %s", path, strict.String())
		}
		return nil, errors.Mark(errors.Wrapf(err, "failed to parse target profile %s", path), errors.ErrUnknown)
	}
	return &p, nil
}

func (p *profile) links() manifest.Table {
	if p.Links == nil {
		return manifest.NewTable(nil)
	}
	return manifest.TableOf(p.Links)
}

func sameName(a, b string) bool {
	return strings.EqualFold(a, b)
}
