package project

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"igloo/pkg/env"
	"igloo/pkg/errors"
	"igloo/pkg/graph"
	"igloo/pkg/manifest"
)

const makeCatalog = `
[stm32f4_make]
TOOLCHAIN = "arm-none-eabi-"
CC = "arm-none-eabi-gcc"
AS = "arm-none-eabi-as"
MCU = "STM32F4"
CFLAGS = ["-O2", "-Wall"]
SUB_DIRS = ["src"]
OBJS = ["src/main.o"]
ALL_PREREQS = ["$(PROJECT_NAME).elf"]
ALL_CMDS = []
CLEAN_PREREQS = [""]
CLEAN_CMDS = ["rm -f $(OBJS)"]

[samd21_make]
CC = "arm-none-eabi-gcc"
`

const targetCatalog = `
[igloo]
schema = "1.0.0"

[target.make]
stm32f4 = "stm32f4_make"
samd21 = "samd21_make"

[target.manifest]
stm32f4 = "stm32f4.toml"
samd21 = "samd21.toml"
`

const stm32f4Profile = `
name = "stm32f4"
includes = ["hal.h", "clock.h"]

[links]
hal = "hal/stm32f4"

[debug]
interface = "stlink"
target = "stm32f4x"
transport = "hla_swd"
`

const samd21Profile = `
includes = ["samd21.h"]
`

type fixture struct {
	env     env.Environment
	catalog *manifest.Catalogs
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	esf := t.TempDir()
	writeFile(t, filepath.Join(esf, "manifest", manifest.MakeCatalogFile), makeCatalog)
	writeFile(t, filepath.Join(esf, "manifest", manifest.TargetCatalogFile), targetCatalog)
	writeFile(t, filepath.Join(esf, "manifest", "target", "stm32f4.toml"), stm32f4Profile)
	writeFile(t, filepath.Join(esf, "manifest", "target", "samd21.toml"), samd21Profile)
	writeFile(t, filepath.Join(esf, "hal", "stm32f4", "hal.h"), "")

	e, err := env.New(t.TempDir(), t.TempDir(), esf)
	require.NoError(t, err)
	c, err := manifest.LoadCatalogs(e)
	require.NoError(t, err)
	return fixture{env: e, catalog: c}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestNew(t *testing.T) {
	f := newFixture(t)

	p, err := New(f.env, f.catalog, "blinky", "stm32f4")
	require.NoError(t, err)

	assert.Equal(t, "blinky", p.Name)
	assert.Equal(t, filepath.Join(f.env.Cwd, "blinky"), p.Root)
	assert.NotEmpty(t, p.ID)
	require.Len(t, p.Targets, 1)
	assert.Equal(t, "stm32f4", p.Targets[0].Name)
	assert.Equal(t, filepath.Join(p.Root, ".igloo", "target", "stm32f4"), p.Targets[0].Root)
}

func TestNewEmptyName(t *testing.T) {
	_, err := New(env.Environment{}, nil, "", "stm32f4")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidProjectName))

	f := newFixture(t)
	_, err = New(f.env, f.catalog, "", "avr128")
	assert.True(t, errors.Is(err, errors.ErrInvalidProjectName))
}

func TestNewRejectsPathNames(t *testing.T) {
	f := newFixture(t)

	for _, name := range []string{"..", ".", "../escaped", "nested/blinky", `nested\blinky`} {
		t.Run(name, func(t *testing.T) {
			_, err := New(f.env, f.catalog, name, "stm32f4")
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrInvalidProjectName))
		})
	}

	entries, err := os.ReadDir(f.env.Cwd)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestValidateName(t *testing.T) {
	assert.NoError(t, ValidateName("blinky"))
	assert.NoError(t, ValidateName("blinky.v2"))
	assert.True(t, errors.Is(ValidateName(""), errors.ErrInvalidProjectName))
	assert.True(t, errors.Is(ValidateName("a/b"), errors.ErrInvalidProjectName))
}

func TestNewInvalidTargetCreatesNothing(t *testing.T) {
	f := newFixture(t)

	_, err := New(f.env, f.catalog, "blinky", "avr128")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidTarget))

	entries, err := os.ReadDir(f.env.Cwd)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestAddTarget(t *testing.T) {
	f := newFixture(t)
	p, err := New(f.env, f.catalog, "blinky", "stm32f4")
	require.NoError(t, err)

	d, err := p.AddTarget("samd21")
	require.NoError(t, err)
	assert.Equal(t, "samd21", d.Name)
	assert.Len(t, p.Targets, 2)

	_, err = p.AddTarget("stm32f4")
	assert.True(t, errors.Is(err, errors.ErrInvalidTarget))
	_, err = p.AddTarget("STM32F4")
	assert.True(t, errors.Is(err, errors.ErrInvalidTarget))
	_, err = p.AddTarget("Samd21")
	assert.True(t, errors.Is(err, errors.ErrInvalidTarget))
	_, err = p.AddTarget("avr128")
	assert.True(t, errors.Is(err, errors.ErrInvalidTarget))
	assert.Len(t, p.Targets, 2)
}

func TestPopulate(t *testing.T) {
	f := newFixture(t)
	p, err := New(f.env, f.catalog, "blinky", "stm32f4")
	require.NoError(t, err)

	require.NoError(t, p.Populate(context.Background(), nil))

	root := filepath.Join(f.env.Cwd, "blinky")
	for _, dir := range []string{".igloo", ".igloo/target/stm32f4", "src", "inc", "cfg", "ESF"} {
		assert.DirExists(t, filepath.Join(root, dir))
	}

	makefile := readFile(t, filepath.Join(root, ".igloo", "target", "stm32f4", "Makefile"))
	assert.True(t, strings.HasPrefix(makefile, "# ePenguin Generated Variables\nPROJECT_NAME=blinky\nTARGET_NAME=stm32f4\n"))
	assert.Contains(t, makefile, "CFLAGS= \\\n-O2 \\\n-Wall\n")

	assert.Equal(t,
		"#ifdef STM32F4\n\t#include \"hal.h\"\n\t#include \"clock.h\"\n#endif\n",
		readFile(t, filepath.Join(root, "inc", "igloo.h")))

	mainC := readFile(t, filepath.Join(root, "src", "main.c"))
	assert.True(t, strings.HasPrefix(mainC, "#include \"igloo.h\"\n"))
	assert.Contains(t, mainC, "int main()\n{\n\treturn 0;\n}")

	assert.Contains(t, readFile(t, filepath.Join(root, ".igloo", "target", "stm32f4", "openocd.cfg")),
		"source [find target/stm32f4x.cfg]")

	link, err := os.Readlink(filepath.Join(root, "ESF", "hal"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(f.env.ESFDir, "hal", "stm32f4"), link)

	assert.True(t, Exists(root, "blinky"))
}

func TestPopulateTwiceOverwrites(t *testing.T) {
	f := newFixture(t)
	p, err := New(f.env, f.catalog, "blinky", "stm32f4")
	require.NoError(t, err)
	require.NoError(t, p.Populate(context.Background(), nil))

	mainPath := filepath.Join(p.Root, "src", "main.c")
	require.NoError(t, os.WriteFile(mainPath, []byte("edited"), 0644))

	statuses := map[string]graph.Status{}
	err = p.Populate(context.Background(), func(task graph.Task, status graph.Status) {
		statuses[task.ID()] = status
	})
	require.NoError(t, err)

	assert.Equal(t, graph.StatusUnchanged, statuses["stm32f4/makefile"])
	assert.Equal(t, graph.StatusUnchanged, statuses["header"])
	assert.Equal(t, graph.StatusWritten, statuses["stub"])
	assert.Equal(t, "#include \"igloo.h\"\n\n\nint main()\n{\n\treturn 0;\n}\n", readFile(t, mainPath))
}

func TestPopulateOrder(t *testing.T) {
	f := newFixture(t)
	p, err := New(f.env, f.catalog, "blinky", "stm32f4")
	require.NoError(t, err)
	_, err = p.AddTarget("samd21")
	require.NoError(t, err)

	g, err := p.Plan()
	require.NoError(t, err)
	sorted, err := g.TopologicalSort()
	require.NoError(t, err)

	var ids []string
	for _, task := range sorted {
		ids = append(ids, task.ID())
	}
	assert.Equal(t, []string{
		"skeleton", "project-file",
		"stm32f4/dir", "stm32f4/links", "stm32f4/openocd", "stm32f4/makefile",
		"samd21/dir", "samd21/links", "samd21/openocd", "samd21/makefile",
		"header", "stub",
	}, ids)
}

func TestPopulateHeaderFailureKeepsEarlierArtifacts(t *testing.T) {
	f := newFixture(t)
	p, err := New(f.env, f.catalog, "blinky", "stm32f4")
	require.NoError(t, err)
	_, err = p.AddTarget("samd21")
	require.NoError(t, err)

	statuses := map[string]graph.Status{}
	err = p.Populate(context.Background(), func(task graph.Task, status graph.Status) {
		statuses[task.ID()] = status
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrUnknown), "samd21 has no MCU")

	assert.FileExists(t, filepath.Join(p.Root, ".igloo", "target", "samd21", "Makefile"))
	assert.NoFileExists(t, filepath.Join(p.Root, "inc", "igloo.h"))
	assert.FileExists(t, filepath.Join(p.Root, "src", "main.c"))
	assert.Equal(t, graph.StatusSkipped, statuses["samd21/openocd"])
	assert.Equal(t, graph.StatusFailed, statuses["header"])
	assert.Equal(t, graph.StatusWritten, statuses["stub"])
}

func TestSaveAndLoad(t *testing.T) {
	f := newFixture(t)
	p, err := New(f.env, f.catalog, "blinky", "stm32f4")
	require.NoError(t, err)
	_, err = p.AddTarget("samd21")
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Join(p.Root, ".igloo"), 0755))
	_, err = p.Save()
	require.NoError(t, err)

	loaded, err := Load(f.env, f.catalog, p.Root)
	require.NoError(t, err)
	assert.Equal(t, p.Name, loaded.Name)
	assert.Equal(t, p.ID, loaded.ID)
	assert.True(t, p.Created.Equal(loaded.Created))
	require.Len(t, loaded.Targets, 2)
	assert.Equal(t, "stm32f4", loaded.Targets[0].Name)
	assert.Equal(t, "samd21", loaded.Targets[1].Name)
}

func TestLoadCatalogMismatch(t *testing.T) {
	f := newFixture(t)
	root := filepath.Join(f.env.Cwd, "blinky")
	writeFile(t, FilePath(root, "blinky"), `
name = "blinky"
id = "x"

[[target]]
name = "stm32f4"
make = "old_make"
manifest = "stm32f4.toml"
`)

	_, err := Load(f.env, f.catalog, root)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrUnknown))
}

func TestLoadMissing(t *testing.T) {
	f := newFixture(t)
	_, err := Load(f.env, f.catalog, t.TempDir())
	assert.True(t, errors.Is(err, errors.ErrConfigNotFound))
}

func TestFindRoot(t *testing.T) {
	f := newFixture(t)
	p, err := New(f.env, f.catalog, "blinky", "stm32f4")
	require.NoError(t, err)
	require.NoError(t, p.Populate(context.Background(), nil))

	root, err := FindRoot(filepath.Join(p.Root, ".igloo", "target", "stm32f4"))
	require.NoError(t, err)
	assert.Equal(t, p.Root, root)

	_, err = FindRoot(t.TempDir())
	assert.True(t, errors.Is(err, errors.ErrConfigNotFound))
}
