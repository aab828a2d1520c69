package synth

import (
	"path/filepath"

	"igloo/pkg/fsutil"
	"igloo/pkg/logger"
	"igloo/pkg/target"
)

// WriteMakefile renders and writes <target root>/Makefile, logging every
// unresolved key.
func WriteMakefile(projectName string, d *target.Descriptor) (fsutil.WriteResult, error) {
	content, warnings := RenderMakefile(projectName, d)
	for _, w := range warnings {
		logger.Logger.Warnw(w, "target", d.Name)
	}
	return fsutil.Rewrite(filepath.Join(d.Root, MakefileName), content)
}

// WriteHeader renders and writes incDir/igloo.h for all targets. Nothing is
// written when rendering fails.
func WriteHeader(incDir string, targets []*target.Descriptor) (fsutil.WriteResult, error) {
	content, err := RenderHeader(targets)
	if err != nil {
		return fsutil.WriteResult{}, err
	}
	return fsutil.Rewrite(filepath.Join(incDir, HeaderName), content)
}

// WriteStub writes srcDir/main.c.
func WriteStub(srcDir string) (fsutil.WriteResult, error) {
	return fsutil.Rewrite(filepath.Join(srcDir, StubName), RenderStub())
}

// WriteOpenOCD renders and writes <target root>/openocd.cfg. The bool is
// false when the target has no debug configuration and nothing was written.
func WriteOpenOCD(d *target.Descriptor) (fsutil.WriteResult, bool, error) {
	content, ok, err := RenderOpenOCD(d)
	if err != nil {
		return fsutil.WriteResult{}, false, err
	}
	if !ok {
		logger.Logger.Warnw("no debug configuration, skipping "+OpenOCDName, "target", d.Name)
		return fsutil.WriteResult{}, false, nil
	}
	res, err := fsutil.Rewrite(filepath.Join(d.Root, OpenOCDName), content)
	return res, true, err
}
