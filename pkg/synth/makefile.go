// Package synth renders the per-target build artifacts: the Makefile, the
// aggregating header, the stub program and the flash tool configuration.
package synth

import (
	"bytes"
	"fmt"
	"strings"

	"igloo/pkg/manifest"
	"igloo/pkg/target"
)

// MakefileName is the generated build file inside a target root.
const MakefileName = "Makefile"

type entryKind int

const (
	// scalarVar is a one-line assignment
	scalarVar entryKind = iota
	// listVar is an assignment continued over one line per element
	listVar
	// rawVar is a one-line assignment of whatever the table holds
	rawVar
	// phaseRule is a rule built from <KEY>_PREREQS and <KEY>_CMDS
	phaseRule
	// literal is fixed text
	literal
)

// entry is one line group of the Makefile. For variables op is the
// assignment operator; for phase rules it is the rule target.
type entry struct {
	kind entryKind
	key  string
	op   string
	text string
}

func scalars(keys ...string) []entry {
	return vars(scalarVar, "=", keys...)
}

func vars(kind entryKind, op string, keys ...string) []entry {
	out := make([]entry, 0, len(keys))
	for _, k := range keys {
		out = append(out, entry{kind: kind, key: k, op: op})
	}
	return out
}

func phase(key, rule string) entry {
	return entry{kind: phaseRule, key: key, op: rule}
}

func text(s string) entry {
	return entry{kind: literal, text: s}
}

const platformBlock = `
ifdef SystemRoot
	SHELL = cmd.exe
	MK_DIR = mkdir
else
	ifeq ($(shell uname), Linux)
		MK_DIR = mkdir -p
	endif

	ifeq ($(shell uname | cut -d _ -f 1), CYGWIN)
		MK_DIR = mkdir -p
	endif

	ifeq ($(shell uname | cut -d _ -f 1), MINGW32)
		MK_DIR = mkdir -p
	endif

	ifeq ($(shell uname | cut -d _ -f 1), MINGW64)
		MK_DIR = mkdir -p
	endif

	ifeq ($(shell uname), Darwin)
		MK_DIR = mkdir -p
	endif
endif

`

const vpathBlock = `
vpath %.c ../../../
vpath %.s ../../../
vpath %.S ../../../

.PHONY: all clean debug push

`

const patternRules = `# Compiler targets
%.o: %.c
	@echo Building file: $<
	@echo ARM/GNU C Compiler
	$(QUOTE)$(CC)$(QUOTE) $(CFLAGS) -o $(QUOTE)$@$(QUOTE) $(QUOTE)$<$(QUOTE)
	@echo Finished building: $<

%.o: %.s
	@echo Building file: $<
	@echo ARM/GNU Assembler
	$(QUOTE)$(AS)$(QUOTE) $(CFLAGS) -o $(QUOTE)$@$(QUOTE) $(QUOTE)$<$(QUOTE)
	@echo Finished building: $<

%.o: %.S
	@echo Building file: $<
	@echo ARM/GNU Preprocessing Assembler
	$(QUOTE)$(CC)$(QUOTE) $(CFLAGS) -o $(QUOTE)$@$(QUOTE) $(QUOTE)$<$(QUOTE)
	@echo Finished building: $<

$(SUB_DIRS):
	$(MK_DIR) $(QUOTE)$@$(QUOTE)

ifneq ($(MAKECMDGOALS),clean)
ifneq ($(strip $(DEPS)),)
-include $(DEPS)
endif
endif

`

// makefileLayout is the Makefile, top to bottom. Adding a variable or a
// phase is a change to this table only.
var makefileLayout = concat(
	scalars("TOOLCHAIN", "CC", "CXX", "OBJCOPY", "OBJDUMP", "GDB", "SIZE", "AS"),
	[]entry{text("\n")},
	scalars("MCPU", "MCU", "LD_PATH", "LD_SCRIPT"),
	[]entry{text("\n")},
	vars(listVar, "=", "CFLAGS", "ELF_FLAGS", "HEX_FLAGS", "EEP_FLAGS"),
	[]entry{text(platformBlock)},
	vars(listVar, "+=", "SUB_DIRS", "OBJS", "OBJS_AS_ARGS", "DIR_INCLUDES"),
	[]entry{text("\n")},
	vars(rawVar, ":=", "DEPS", "DEPS_AS_ARGS"),
	[]entry{
		text(vpathBlock),
		phase("ALL", "all"),
		phase("ELF_TARGET", "$(PROJECT_NAME).elf"),
		phase("BIN_TARGET", "$(PROJECT_NAME).bin"),
		phase("HEX_TARGET", "$(PROJECT_NAME).hex"),
		phase("EEP_TARGET", "$(PROJECT_NAME).eep"),
		phase("LSS_TARGET", "$(PROJECT_NAME).lss"),
		text(patternRules),
		phase("CLEAN", "clean"),
		phase("DEBUG", "debug"),
		phase("PUSH", "push"),
		text("QUOTE:=\"\n"),
	},
)

func concat(groups ...[]entry) []entry {
	var out []entry
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

// MakefileKeys lists every make table key the Makefile reads, in order.
func MakefileKeys() []string {
	var keys []string
	for _, e := range makefileLayout {
		switch e.kind {
		case literal:
		case phaseRule:
			keys = append(keys, e.key+"_PREREQS", e.key+"_CMDS")
		default:
			keys = append(keys, e.key)
		}
	}
	return keys
}

// makefileRenderer accumulates the Makefile text and the keys it could not
// resolve.
type makefileRenderer struct {
	buf      bytes.Buffer
	vars     manifest.Table
	table    string
	warnings []string
}

// RenderMakefile renders the Makefile for one target. Keys missing from the
// make table are reported as warnings and their lines omitted. Rendering is
// deterministic: the same descriptor always yields the same bytes.
func RenderMakefile(projectName string, d *target.Descriptor) ([]byte, []string) {
	r := &makefileRenderer{vars: d.Vars, table: d.Entry.MakeTable}

	r.buf.WriteString("# ePenguin Generated Variables\n")
	fmt.Fprintf(&r.buf, "PROJECT_NAME=%s\n", projectName)
	fmt.Fprintf(&r.buf, "TARGET_NAME=%s\n", d.Name)

	for _, e := range makefileLayout {
		switch e.kind {
		case scalarVar, rawVar:
			r.scalar(e)
		case listVar:
			r.list(e)
		case phaseRule:
			r.rule(e)
		case literal:
			r.buf.WriteString(e.text)
		}
	}

	return r.buf.Bytes(), r.warnings
}

func (r *makefileRenderer) lookup(key string) (manifest.Value, bool) {
	v, ok := r.vars.Get(key)
	if !ok {
		r.warnings = append(r.warnings, fmt.Sprintf("%s not found in make table %s", key, r.table))
	}
	return v, ok
}

func (r *makefileRenderer) scalar(e entry) {
	v, ok := r.lookup(e.key)
	if !ok {
		return
	}
	fmt.Fprintf(&r.buf, "%s%s%s\n", e.key, e.op, v.String())
}

func (r *makefileRenderer) list(e entry) {
	v, ok := r.lookup(e.key)
	if !ok {
		return
	}
	r.buf.WriteString(e.key + e.op)
	r.continued(nonEmpty(v.Items()))
}

func (r *makefileRenderer) rule(e entry) {
	prereqs, hasPrereqs := r.lookup(e.key + "_PREREQS")
	cmds, hasCmds := r.lookup(e.key + "_CMDS")
	if !hasPrereqs && !hasCmds {
		return
	}

	r.buf.WriteString(e.op + ":")
	var deps []string
	if hasPrereqs {
		deps = nonEmpty(prereqs.Items())
	}
	r.continued(deps)

	if hasCmds {
		for _, cmd := range nonEmpty(cmds.Items()) {
			r.buf.WriteString("\t" + cmd + "\n")
		}
	}
	r.buf.WriteString("\n")
}

// continued writes items after an already written "KEY=" or "target:",
// one per line joined by backslash-newline. The last line never ends in a
// backslash and an empty list ends the line immediately.
func (r *makefileRenderer) continued(items []string) {
	if len(items) == 0 {
		r.buf.WriteString("\n")
		return
	}
	r.buf.WriteString(" \\\n")
	r.buf.WriteString(strings.Join(items, " \\\n"))
	r.buf.WriteString("\n")
}

func nonEmpty(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if strings.TrimSpace(item) != "" {
			out = append(out, item)
		}
	}
	return out
}
