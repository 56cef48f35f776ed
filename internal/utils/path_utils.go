// Package utils holds small native-filesystem path helpers used at the
// boundary where archive-relative paths become real output paths
// (spec §6 "the core does not touch the native filesystem directly" —
// these helpers live outside CORE; no package in this module imports
// them at present).
package utils

import (
	"path/filepath"

	"github.com/funvibe/archctl/internal/config"
)

// ResolveOutputPath joins a native output-directory root with an
// archive-relative target path, converting the "/"-joined archive
// convention to the host's separator.
func ResolveOutputPath(outputDir, targetPath string) string {
	return filepath.Join(outputDir, filepath.FromSlash(targetPath))
}

// ExtractScriptName derives a bare script name from its archive path:
// the base filename with any recognized script extension trimmed.
func ExtractScriptName(path string) string {
	name := filepath.Base(path)
	return config.TrimSourceExt(name)
}
