// Package manifest is the dotted-key store over the on-disk catalogs.
//
// A Store wraps a viper instance loaded from one TOML file plus optional
// overlays merged on top, later files winning per key. Keys are
// case-insensitive.
package manifest

import (
	"os"
	"sort"

	"github.com/spf13/viper"

	"igloo/pkg/errors"
	"igloo/pkg/logger"
)

// Store is a read-only hierarchical key/value table.
type Store struct {
	name  string
	v     *viper.Viper
	files []string
}

// Load reads path and merges each existing overlay on top of it. A missing
// base file fails with ErrConfigNotFound; missing overlays are skipped.
func Load(name, path string, overlays ...string) (*Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, errors.WithHintf(
			errors.Wrapf(errors.ErrConfigNotFound, "%s catalog %s", name, path),
			"check that $ESF_DIR points at a support files checkout")
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "failed to parse %s", path), errors.ErrUnknown)
	}
	files := []string{path}

	for _, overlay := range overlays {
		if _, err := os.Stat(overlay); err != nil {
			continue
		}
		v.SetConfigFile(overlay)
		if err := v.MergeInConfig(); err != nil {
			return nil, errors.Mark(errors.Wrapf(err, "failed to merge %s", overlay), errors.ErrUnknown)
		}
		logger.Logger.Debugw("merged manifest overlay", "catalog", name, "file", overlay)
		files = append(files, overlay)
	}

	return &Store{name: name, v: v, files: files}, nil
}

// FromMap builds a Store from in-memory data.
func FromMap(name string, data map[string]any) (*Store, error) {
	v := viper.New()
	if err := v.MergeConfigMap(data); err != nil {
		return nil, errors.Wrapf(err, "failed to build %s store", name)
	}
	return &Store{name: name, v: v}, nil
}

// Name identifies the store in diagnostics.
func (s *Store) Name() string {
	return s.name
}

// Files lists the files merged into the store, base first.
func (s *Store) Files() []string {
	return s.files
}

// Has reports whether key is set to anything, including a table.
func (s *Store) Has(key string) bool {
	return s.v.IsSet(key)
}

// Get returns the value at a dotted key. The second result is false when
// the key is absent or names a table.
func (s *Store) Get(key string) (Value, bool) {
	if !s.v.IsSet(key) {
		return Value{}, false
	}
	return valueOf(s.v.Get(key))
}

// Table returns the table at a dotted key.
func (s *Store) Table(key string) (Table, bool) {
	if !s.v.IsSet(key) {
		return nil, false
	}
	raw, ok := s.v.Get(key).(map[string]any)
	if !ok {
		return nil, false
	}
	return TableOf(raw), true
}

// Keys lists the immediate child keys under prefix in sorted order. An
// empty prefix lists the top level.
func (s *Store) Keys(prefix string) []string {
	var m map[string]any
	if prefix == "" {
		m = s.v.AllSettings()
	} else {
		m = s.v.GetStringMap(prefix)
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
