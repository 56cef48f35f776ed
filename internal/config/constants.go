package config

// Version is the current archctl version, set at build time via
// -ldflags the same way the teacher's Version var is.
var Version = "0.1.0"

// SourceFileExtensions are the recognized archetype script extensions.
var SourceFileExtensions = []string{".xml"}

// TrimSourceExt removes a recognized script extension from a filename.
// Returns the original string if no extension matches.
func TrimSourceExt(name string) string {
	for _, ext := range SourceFileExtensions {
		if len(name) >= len(ext) && name[len(name)-len(ext):] == ext {
			return name[:len(name)-len(ext)]
		}
	}
	return name
}
