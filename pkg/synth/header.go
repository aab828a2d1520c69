package synth

import (
	"bytes"
	"fmt"
	"strings"

	"igloo/pkg/errors"
	"igloo/pkg/target"
)

const (
	// HeaderName is the aggregating header under <project>/inc.
	HeaderName = "igloo.h"
	// StubName is the stub program under <project>/src.
	StubName = "main.c"
)

// RenderHeader renders one #ifdef block per target, keyed on the target's
// MCU symbol, including the target's headers. A target without an MCU
// fails with ErrUnknown and nothing is returned.
func RenderHeader(targets []*target.Descriptor) ([]byte, error) {
	var buf bytes.Buffer
	for _, d := range targets {
		mcu, ok := d.Vars.Get("MCU")
		if !ok || strings.TrimSpace(mcu.String()) == "" {
			return nil, errors.WithHintf(
				errors.Wrapf(errors.ErrUnknown, "MCU definition not found in make table %s for target %s", d.Entry.MakeTable, d.Name),
				"add MCU to [%s] in the make catalog", d.Entry.MakeTable)
		}
		fmt.Fprintf(&buf, "#ifdef %s\n", mcu.String())
		for _, inc := range d.Includes {
			if inc == "" {
				continue
			}
			fmt.Fprintf(&buf, "\t#include \"%s\"\n", inc)
		}
		buf.WriteString("#endif\n")
	}
	return buf.Bytes(), nil
}

// RenderStub renders the program entry point including the aggregating
// header.
func RenderStub() []byte {
	return []byte(fmt.Sprintf("#include \"%s\"\n\n\nint main()\n{\n\treturn 0;\n}\n", HeaderName))
}
