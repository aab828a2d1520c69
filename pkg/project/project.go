// Package project owns the targets of one firmware project and
// materializes its directory tree and artifacts.
package project

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"igloo/pkg/env"
	"igloo/pkg/errors"
	"igloo/pkg/fsutil"
	"igloo/pkg/graph"
	"igloo/pkg/logger"
	"igloo/pkg/manifest"
	"igloo/pkg/synth"
	"igloo/pkg/target"
)

// Directory names inside a project root.
const (
	MetaDir   = ".igloo"
	TargetDir = "target"
	SrcDir    = "src"
	IncDir    = "inc"
	CfgDir    = "cfg"
	ESFDir    = "ESF"
)

// Project is a named firmware project and the targets it builds for.
type Project struct {
	Name    string
	Root    string
	ID      string
	Created time.Time
	// Targets in resolution order; never empty after New
	Targets []*target.Descriptor

	env      env.Environment
	catalogs *manifest.Catalogs
}

// New validates name, resolves targetName against the catalogs and returns
// a project rooted at <cwd>/<name> holding that one target. Nothing is
// written to disk; see Populate.
func New(e env.Environment, c *manifest.Catalogs, name, targetName string) (*Project, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}

	p := &Project{
		Name:     name,
		Root:     filepath.Join(e.Cwd, name),
		ID:       uuid.NewString(),
		Created:  time.Now().UTC().Truncate(time.Second),
		env:      e,
		catalogs: c,
	}
	if _, err := p.AddTarget(targetName); err != nil {
		return nil, err
	}
	return p, nil
}

// ValidateName fails with ErrInvalidProjectName unless name is a single
// non-empty path element, so the project root stays under the working
// directory.
func ValidateName(name string) error {
	switch {
	case name == "":
		return errors.Wrap(errors.ErrInvalidProjectName, "project name is empty")
	case name == "." || name == "..":
		return errors.Wrapf(errors.ErrInvalidProjectName, "project name %q is not a directory name", name)
	case strings.ContainsAny(name, `/\`):
		return errors.Wrapf(errors.ErrInvalidProjectName, "project name %q may not contain '/' or '\\'", name)
	}
	return nil
}

// AddTarget resolves name and appends its descriptor. Adding a target the
// project already has, in any letter case, fails with ErrInvalidTarget.
func (p *Project) AddTarget(name string) (*target.Descriptor, error) {
	for _, t := range p.Targets {
		if strings.EqualFold(t.Name, name) {
			return nil, errors.Wrapf(errors.ErrInvalidTarget, "project %s already has target %s", p.Name, name)
		}
	}

	entry, err := target.Resolve(p.catalogs.Make, p.catalogs.Targets, name)
	if err != nil {
		return nil, err
	}
	logger.Logger.Debugw("verified target exists", "target", name, "make_table", entry.MakeTable)

	d, err := target.FromEntry(p.TargetRoot(name), p.env, p.catalogs.Make, entry)
	if err != nil {
		return nil, err
	}
	p.Targets = append(p.Targets, d)
	return d, nil
}

// TargetRoot is the config directory of the named target.
func (p *Project) TargetRoot(name string) string {
	return filepath.Join(p.Root, MetaDir, TargetDir, name)
}

// Dir joins elem onto the project root.
func (p *Project) Dir(elem ...string) string {
	return filepath.Join(append([]string{p.Root}, elem...)...)
}

// Populate creates the directory skeleton, then for each target its
// directory, support file links, flash tool configuration and Makefile,
// then the shared header and stub program. Steps run one at a time and
// stop at the first failure, except the stub program, which is written
// whenever the skeleton exists. Files already written stay in place.
func (p *Project) Populate(ctx context.Context, progress graph.ProgressCallback) error {
	g, err := p.Plan()
	if err != nil {
		return err
	}
	_, err = graph.NewRunner(progress).Execute(ctx, g)
	return err
}

// Plan builds the generation graph Populate runs.
func (p *Project) Plan() (*graph.Graph, error) {
	g := graph.NewGraph()
	var addErr error
	add := func(t graph.Task) graph.Task {
		if err := g.AddTask(t); err != nil && addErr == nil {
			addErr = errors.Wrap(errors.Mark(err, errors.ErrInvalidTarget), "duplicate target")
		}
		return t
	}

	skeleton := add(graph.NewFunc("skeleton", p.createSkeleton))
	add(graph.NewFunc("project-file", func(ctx context.Context) graph.TaskResult {
		return fileResult(p.Save())
	}, skeleton))

	for _, d := range p.Targets {
		dir := add(graph.NewFunc(d.Name+"/dir", func(ctx context.Context) graph.TaskResult {
			if err := d.Generate(); err != nil {
				return graph.TaskResult{Error: err}
			}
			return graph.TaskResult{Files: []string{d.Root}}
		}, skeleton))
		add(graph.NewFunc(d.Name+"/links", func(ctx context.Context) graph.TaskResult {
			created, err := d.PopulateLinks(p.env.ESFDir, p.Dir(ESFDir))
			return graph.TaskResult{Files: created, Unchanged: len(created) == 0 && err == nil, Error: err}
		}, dir))
		add(graph.NewFunc(d.Name+"/openocd", func(ctx context.Context) graph.TaskResult {
			res, ok, err := synth.WriteOpenOCD(d)
			if err == nil && !ok {
				return graph.TaskResult{Skipped: true}
			}
			return fileResult(res, err)
		}, dir))
		add(graph.NewFunc(d.Name+"/makefile", func(ctx context.Context) graph.TaskResult {
			return fileResult(synth.WriteMakefile(p.Name, d))
		}, dir))
	}

	add(graph.NewFunc("header", func(ctx context.Context) graph.TaskResult {
		return fileResult(synth.WriteHeader(p.Dir(IncDir), p.Targets))
	}, skeleton))
	add(graph.NewFunc("stub", func(ctx context.Context) graph.TaskResult {
		return fileResult(synth.WriteStub(p.Dir(SrcDir)))
	}, skeleton).Always())

	if addErr != nil {
		return nil, addErr
	}
	return g, nil
}

func (p *Project) createSkeleton(ctx context.Context) graph.TaskResult {
	dirs := []string{
		p.Root,
		p.Dir(MetaDir),
		p.Dir(MetaDir, TargetDir),
		p.Dir(SrcDir),
		p.Dir(IncDir),
		p.Dir(CfgDir),
		p.Dir(ESFDir),
	}
	for _, dir := range dirs {
		if err := fsutil.EnsureDir(dir); err != nil {
			return graph.TaskResult{Error: err}
		}
	}
	return graph.TaskResult{Files: dirs}
}

func fileResult(res fsutil.WriteResult, err error) graph.TaskResult {
	if err != nil {
		return graph.TaskResult{Error: err}
	}
	return graph.TaskResult{Files: []string{res.Path}, Unchanged: res.Unchanged}
}
