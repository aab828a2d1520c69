// Package target resolves target names against the catalogs and holds the
// per-target build configuration.
package target

import (
	"sort"
	"strings"

	"igloo/pkg/errors"
	"igloo/pkg/manifest"
)

const (
	makeNamespace     = "target.make"
	manifestNamespace = "target.manifest"
)

// Entry is one row of the target catalog.
type Entry struct {
	// Name is the target identifier as requested
	Name string
	// MakeTable names the make catalog table holding the build variables
	MakeTable string
	// ManifestFile names the target profile under the profile directory
	ManifestFile string
}

// MakeKey is the target catalog key holding the make table name.
func MakeKey(name string) string {
	return makeNamespace + "." + name
}

// ManifestKey is the target catalog key holding the profile file name.
func ManifestKey(name string) string {
	return manifestNamespace + "." + name
}

// Resolve validates name against the target catalog and returns its entry.
// Unknown names fail with ErrInvalidTarget. A known name whose make table or
// profile reference is missing, or whose make table is absent from the make
// catalog, fails with ErrUnknown since the catalogs should agree.
func Resolve(makeCatalog, targetCatalog *manifest.Store, name string) (Entry, error) {
	if name == "" {
		return Entry{}, errors.Wrap(errors.ErrInvalidTarget, "target name is empty")
	}
	if strings.ContainsAny(name, `./\`) {
		return Entry{}, errors.Wrapf(errors.ErrInvalidTarget, "target name %q may not contain '.', '/' or '\\'", name)
	}

	makeKey, manifestKey := MakeKey(name), ManifestKey(name)
	if !targetCatalog.Has(makeKey) && !targetCatalog.Has(manifestKey) {
		return Entry{}, errors.WithHint(
			errors.Wrapf(errors.ErrInvalidTarget, "target %q is not in the catalog", name),
			"run 'igloo targets' to list the known targets")
	}

	makeTable, ok := targetCatalog.Get(makeKey)
	if !ok || makeTable.IsList() || makeTable.String() == "" {
		return Entry{}, errors.Wrapf(errors.ErrUnknown, "catalog key %s is missing", makeKey)
	}
	manifestFile, ok := targetCatalog.Get(manifestKey)
	if !ok || manifestFile.IsList() || manifestFile.String() == "" {
		return Entry{}, errors.Wrapf(errors.ErrUnknown, "catalog key %s is missing", manifestKey)
	}
	if _, ok := makeCatalog.Table(makeTable.String()); !ok {
		return Entry{}, errors.Wrapf(errors.ErrUnknown,
			"make table %q for target %q is not in the make catalog", makeTable.String(), name)
	}

	return Entry{
		Name:         name,
		MakeTable:    makeTable.String(),
		ManifestFile: manifestFile.String(),
	}, nil
}

// Catalog resolves every target listed in the target catalog, sorted by
// name. Entries that fail to resolve are returned alongside as errors.
func Catalog(makeCatalog, targetCatalog *manifest.Store) ([]Entry, []error) {
	seen := map[string]bool{}
	var names []string
	for _, ns := range []string{makeNamespace, manifestNamespace} {
		for _, name := range targetCatalog.Keys(ns) {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}

	var entries []Entry
	var errs []error
	for _, name := range sortedCopy(names) {
		entry, err := Resolve(makeCatalog, targetCatalog, name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		entries = append(entries, entry)
	}
	return entries, errs
}

func sortedCopy(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	sort.Strings(out)
	return out
}
