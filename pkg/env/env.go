// Package env holds the process environment igloo operates in.
package env

import (
	"os"
	"path/filepath"

	"igloo/pkg/errors"
)

// ESFVar names the environment variable pointing at the support files root.
const ESFVar = "ESF_DIR"

// Environment is the explicit replacement for ambient lookups of the working
// directory, home directory and support files root. It is built once by the
// command dispatcher and passed to every constructor that needs it.
type Environment struct {
	// Cwd is the directory new projects are created under
	Cwd string
	// Home is the user's home directory
	Home string
	// ESFDir is the root of the support files tree holding the catalogs
	ESFDir string
}

// New builds an Environment from explicit values and validates it.
func New(cwd, home, esfDir string) (Environment, error) {
	e := Environment{Cwd: cwd, Home: home, ESFDir: esfDir}
	if err := e.Validate(); err != nil {
		return Environment{}, err
	}
	return e, nil
}

// Discover reads the working and home directories from the OS. esfDir is
// supplied by the caller, which binds it to ESF_DIR.
func Discover(esfDir string) (Environment, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return Environment{}, errors.Wrap(errors.ErrEnvInfoInvalid, err.Error())
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return Environment{}, errors.Wrap(errors.ErrEnvInfoInvalid, err.Error())
	}
	if esfDir != "" {
		esfDir, err = filepath.Abs(esfDir)
		if err != nil {
			return Environment{}, errors.Wrap(errors.ErrEnvInfoInvalid, err.Error())
		}
	}
	return New(cwd, home, esfDir)
}

// Validate fails with ErrEnvInfoInvalid when any value is empty.
func (e Environment) Validate() error {
	switch {
	case e.Cwd == "":
		return errors.Wrap(errors.ErrEnvInfoInvalid, "working directory is empty")
	case e.Home == "":
		return errors.Wrap(errors.ErrEnvInfoInvalid, "home directory is empty")
	case e.ESFDir == "":
		return errors.WithHintf(
			errors.Wrapf(errors.ErrEnvInfoInvalid, "$%s is not defined", ESFVar),
			"export %s to the root of your support files checkout", ESFVar)
	}
	return nil
}

// ManifestDir is where the target and make catalogs live.
func (e Environment) ManifestDir() string {
	return filepath.Join(e.ESFDir, "manifest")
}

// ProfileDir is where per-target profile files live.
func (e Environment) ProfileDir() string {
	return filepath.Join(e.ManifestDir(), "target")
}

// UserDir is the per-user igloo directory holding optional overlays.
func (e Environment) UserDir() string {
	return filepath.Join(e.Home, ".igloo")
}
