package manifest

import (
	"path/filepath"

	"github.com/Masterminds/semver/v3"

	"igloo/pkg/env"
	"igloo/pkg/errors"
)

const (
	// MakeCatalogFile holds the named make tables.
	MakeCatalogFile = "make-manifest.toml"
	// TargetCatalogFile maps target names to make tables and profiles.
	TargetCatalogFile = "target-manifest.toml"

	// SchemaKey optionally declares the catalog layout version.
	SchemaKey = "igloo.schema"
	// SupportedSchema is the range of catalog layouts this build reads.
	SupportedSchema = "^1"
)

// Catalogs is the two-tier manifest: make rules and the target catalog.
type Catalogs struct {
	Make    *Store
	Targets *Store
}

// LoadCatalogs reads both catalogs from the support files root. The user's
// ~/.igloo/make-manifest.toml, when present, is merged over the make catalog.
func LoadCatalogs(e env.Environment) (*Catalogs, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}

	makeStore, err := Load("make",
		filepath.Join(e.ManifestDir(), MakeCatalogFile),
		filepath.Join(e.UserDir(), MakeCatalogFile))
	if err != nil {
		return nil, err
	}

	targetStore, err := Load("target", filepath.Join(e.ManifestDir(), TargetCatalogFile))
	if err != nil {
		return nil, err
	}

	if err := CheckSchema(targetStore); err != nil {
		return nil, err
	}

	return &Catalogs{Make: makeStore, Targets: targetStore}, nil
}

// CheckSchema validates the optional schema marker against SupportedSchema.
// Catalogs without a marker are accepted.
func CheckSchema(s *Store) error {
	v, ok := s.Get(SchemaKey)
	if !ok {
		return nil
	}
	version, err := semver.NewVersion(v.String())
	if err != nil {
		return errors.Wrapf(errors.ErrUnknown, "%s catalog schema %q: %v", s.Name(), v.String(), err)
	}
	constraint, err := semver.NewConstraint(SupportedSchema)
	if err != nil {
		return errors.Wrap(err, "invalid supported schema range")
	}
	if !constraint.Check(version) {
		return errors.WithHintf(
			errors.Wrapf(errors.ErrUnknown, "%s catalog schema %s is outside %s", s.Name(), version, SupportedSchema),
			"update igloo or check out a compatible support files revision")
	}
	return nil
}
