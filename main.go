package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/pterm/pterm"

	"igloo/pkg/env"
	"igloo/pkg/errors"
	"igloo/pkg/graph"
	"igloo/pkg/logger"
	"igloo/pkg/manifest"
	"igloo/pkg/project"
	"igloo/pkg/target"
	"igloo/pkg/watch"
)

const version = "0.1.0"

type CLI struct {
	Version  kong.VersionFlag `short:"v" help:"Show version information"`
	Verbose  bool             `help:"Enable debug logging"`
	JSONLogs bool             `name:"json-logs" help:"Emit logs as JSON"`
	ESFDir   string           `name:"esf-dir" env:"ESF_DIR" help:"Root of the support files tree holding the manifests"`

	New     NewCmd     `cmd:"" help:"Creates a new igloo project"`
	Add     AddCmd     `cmd:"" help:"Adds a target to the current project and regenerates it"`
	Regen   RegenCmd   `cmd:"" help:"Regenerates every artifact of the current project"`
	Targets TargetsCmd `cmd:"" help:"Lists the targets in the catalog"`
	Watch   WatchCmd   `cmd:"" help:"Regenerates the current project whenever a manifest changes"`
}

type NewCmd struct {
	ProjectName string `arg:"" help:"The name of the project to be created"`
	Target      string `short:"t" required:"" help:"MCU target"`
}

type AddCmd struct {
	Target string `short:"t" required:"" help:"MCU target"`
}

type RegenCmd struct{}

type TargetsCmd struct{}

type WatchCmd struct{}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("igloo"),
		kong.Description("Scaffolds embedded MCU firmware projects from target manifests"),
		kong.Vars{"version": version},
	)

	if err := logger.Initialize(logger.Options{JSON: cli.JSONLogs, Verbose: cli.Verbose}); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	var err error
	switch ctx.Command() {
	case "new <project-name>":
		err = runNew(cli.ESFDir, cli.New)
	case "add":
		err = runAdd(cli.ESFDir, cli.Add)
	case "regen":
		err = runRegen(cli.ESFDir)
	case "targets":
		err = runTargets(cli.ESFDir)
	case "watch":
		err = runWatch(cli.ESFDir)
	default:
		err = errors.Newf("unhandled command %s", ctx.Command())
	}

	if err != nil {
		printError(err)
		logger.Sync()
		os.Exit(1)
	}
}

func printError(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	for _, hint := range errors.GetAllHints(err) {
		fmt.Fprintf(os.Stderr, "Hint: %s\n", hint)
	}
	if !errors.IsUserError(err) && errors.Is(err, errors.ErrUnknown) {
		fmt.Fprintln(os.Stderr, "The support file manifests are inconsistent; this is not caused by your input.")
	}
}

// setup discovers the environment and loads the catalogs
func setup(esfDir string) (env.Environment, *manifest.Catalogs, error) {
	e, err := env.Discover(esfDir)
	if err != nil {
		return env.Environment{}, nil, err
	}
	catalogs, err := manifest.LoadCatalogs(e)
	if err != nil {
		return env.Environment{}, nil, err
	}
	return e, catalogs, nil
}

func runNew(esfDir string, cmd NewCmd) error {
	if err := project.ValidateName(cmd.ProjectName); err != nil {
		return err
	}

	e, catalogs, err := setup(esfDir)
	if err != nil {
		return err
	}

	root := filepath.Join(e.Cwd, cmd.ProjectName)
	if project.Exists(root, cmd.ProjectName) {
		return errors.WithHint(
			errors.Wrapf(errors.ErrConfigFound, "project %s already exists at %s", cmd.ProjectName, root),
			"run 'igloo regen' inside the project to regenerate it")
	}

	prj, err := project.New(e, catalogs, cmd.ProjectName, cmd.Target)
	if err != nil {
		return err
	}
	pterm.Info.Printfln("Verified target %s exists", cmd.Target)

	if err := populate(prj); err != nil {
		return err
	}
	pterm.Success.Printfln("Created project %s for %s at %s", prj.Name, cmd.Target, prj.Root)
	return nil
}

// loadCurrent finds the project enclosing the working directory
func loadCurrent(e env.Environment, catalogs *manifest.Catalogs) (*project.Project, error) {
	root, err := project.FindRoot(e.Cwd)
	if err != nil {
		return nil, err
	}
	return project.Load(e, catalogs, root)
}

func runAdd(esfDir string, cmd AddCmd) error {
	e, catalogs, err := setup(esfDir)
	if err != nil {
		return err
	}
	prj, err := loadCurrent(e, catalogs)
	if err != nil {
		return err
	}
	if _, err := prj.AddTarget(cmd.Target); err != nil {
		return err
	}
	if err := populate(prj); err != nil {
		return err
	}
	pterm.Success.Printfln("Added target %s to %s", cmd.Target, prj.Name)
	return nil
}

func runRegen(esfDir string) error {
	e, catalogs, err := setup(esfDir)
	if err != nil {
		return err
	}
	prj, err := loadCurrent(e, catalogs)
	if err != nil {
		return err
	}
	if err := populate(prj); err != nil {
		return err
	}
	pterm.Success.Printfln("Regenerated %s", prj.Name)
	return nil
}

func runTargets(esfDir string) error {
	_, catalogs, err := setup(esfDir)
	if err != nil {
		return err
	}

	entries, errs := target.Catalog(catalogs.Make, catalogs.Targets)
	data := pterm.TableData{{"Target", "Make table", "Manifest"}}
	for _, entry := range entries {
		data = append(data, []string{entry.Name, entry.MakeTable, entry.ManifestFile})
	}
	if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
		return errors.Wrap(err, "failed to render target table")
	}
	for _, err := range errs {
		pterm.Warning.Println(err.Error())
	}
	return nil
}

func runWatch(esfDir string) error {
	e, catalogs, err := setup(esfDir)
	if err != nil {
		return err
	}
	root, err := project.FindRoot(e.Cwd)
	if err != nil {
		return err
	}

	rebuild := func(ctx context.Context) error {
		catalogs, err := manifest.LoadCatalogs(e)
		if err != nil {
			return err
		}
		prj, err := project.Load(e, catalogs, root)
		if err != nil {
			return err
		}
		if err := prj.Populate(ctx, printProgress(prj.Root)); err != nil {
			return err
		}
		pterm.Success.Printfln("Regenerated %s", prj.Name)
		return nil
	}

	prj, err := project.Load(e, catalogs, root)
	if err != nil {
		return err
	}
	if err := populate(prj); err != nil {
		return err
	}

	w, err := watch.New([]string{e.ManifestDir(), e.ProfileDir(), e.UserDir()}, watch.DefaultDelay, rebuild)
	if err != nil {
		return err
	}
	defer w.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	pterm.Info.Printfln("Watching %s for manifest changes, press Ctrl+C to stop", e.ManifestDir())
	return w.Run(ctx)
}

func populate(prj *project.Project) error {
	return prj.Populate(context.Background(), printProgress(prj.Root))
}

// printProgress reports each finished generation step relative to root
func printProgress(root string) graph.ProgressCallback {
	return func(task graph.Task, status graph.Status) {
		var symbol string
		switch status {
		case graph.StatusWritten:
			symbol = pterm.FgGreen.Sprint("✓")
		case graph.StatusUnchanged:
			symbol = pterm.FgCyan.Sprint("↻")
		case graph.StatusSkipped:
			symbol = pterm.FgGray.Sprint("-")
		case graph.StatusFailed:
			symbol = pterm.FgRed.Sprint("✗")
		default:
			return
		}
		fmt.Printf("  %s %s %s\n", symbol, task.ID(), pterm.FgGray.Sprintf("(%s)", filepath.Base(root)))
	}
}
