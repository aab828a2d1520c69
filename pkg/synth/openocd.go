package synth

import (
	"bytes"
	"fmt"
	"strings"

	"igloo/pkg/errors"
	"igloo/pkg/target"
)

// OpenOCDName is the flash tool configuration inside a target root.
const OpenOCDName = "openocd.cfg"

// RenderOpenOCD renders the flash tool configuration for a target. ok is
// false when the target has no debug configuration. Interface and target
// scripts are required once a debug table exists.
func RenderOpenOCD(d *target.Descriptor) (content []byte, ok bool, err error) {
	dbg := d.Debug
	if dbg == nil {
		return nil, false, nil
	}
	if dbg.Interface == "" || dbg.Target == "" {
		return nil, false, errors.Wrapf(errors.ErrUnknown,
			"debug table of %s needs both interface and target", d.Entry.ManifestFile)
	}

	var buf bytes.Buffer
	buf.WriteString("# ePenguin Generated OpenOCD Configuration\n")
	fmt.Fprintf(&buf, "source [find interface/%s]\n", cfgName(dbg.Interface))
	if dbg.Transport != "" {
		fmt.Fprintf(&buf, "transport select %s\n", dbg.Transport)
	}
	if dbg.AdapterSpeed > 0 {
		fmt.Fprintf(&buf, "adapter speed %d\n", dbg.AdapterSpeed)
	}
	fmt.Fprintf(&buf, "source [find target/%s]\n", cfgName(dbg.Target))
	if dbg.GDBPort > 0 {
		fmt.Fprintf(&buf, "gdb_port %d\n", dbg.GDBPort)
	}
	return buf.Bytes(), true, nil
}

func cfgName(name string) string {
	if strings.HasSuffix(name, ".cfg") {
		return name
	}
	return name + ".cfg"
}
