// archctl is the reference command-line front-end over the archetype
// engine: point it at an archetype script (directory or zip archive),
// answer its inputs in batch or interactive mode, and it writes the
// generated project tree to an output directory.
//
// Grounded on github.com/funvibe/funxy's cmd/funxy front-end shape: a
// thin flag-parsing main that wires CORE packages together and maps
// errors to process exit codes, rather than embedding any business
// logic itself.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/funvibe/archctl/internal/batchconfig"
	"github.com/funvibe/archctl/internal/config"
	"github.com/funvibe/archctl/internal/context"
	"github.com/funvibe/archctl/internal/diag"
	"github.com/funvibe/archctl/internal/output"
	"github.com/funvibe/archctl/internal/resolver"
	"github.com/funvibe/archctl/internal/script"
	"github.com/funvibe/archctl/internal/session"
	"github.com/funvibe/archctl/internal/walker"
	"github.com/funvibe/archctl/internal/xmlload"
	"github.com/funvibe/archctl/pkg/archive"
	"github.com/funvibe/archctl/pkg/prompter"
	"github.com/funvibe/archctl/pkg/templateengine"
)

// Exit codes per spec §6: 0 success, 1 user error (bad input/guard/
// resolution failure), 2 internal error (load failure, I/O failure).
const (
	exitOK       = 0
	exitUserErr  = 1
	exitInternal = 2
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("archctl", flag.ContinueOnError)
	archetypePath := fs.String("archetype", "", "path to the archetype script or directory/zip containing one")
	entryScript := fs.String("script", "archetype.xml", "entry script path within the archetype, relative to -archetype")
	batchPath := fs.String("batch", "", "path to a batch answers file (.properties or .yml/.yaml)")
	interactive := fs.Bool("interactive", false, "prompt for every input; -batch answers are not consulted in this mode")
	outDir := fs.String("out", "", "output directory for the generated project")
	version := fs.Bool("version", false, "print the archctl version and exit")
	fs.SetOutput(os.Stderr)
	if err := fs.Parse(args); err != nil {
		return exitUserErr
	}
	if *version {
		fmt.Println(config.Version)
		return exitOK
	}
	if *archetypePath == "" || *outDir == "" {
		fmt.Fprintln(os.Stderr, "archctl: -archetype and -out are required")
		return exitUserErr
	}

	arch, closeArch, err := openArchive(*archetypePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "archctl: %v\n", err)
		return exitInternal
	}
	if closeArch != nil {
		defer closeArch()
	}

	batch := map[string]string{}
	if *batchPath != "" {
		f, err := os.Open(*batchPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "archctl: %v\n", err)
			return exitInternal
		}
		batch, err = batchconfig.Load(f, filepath.Ext(*batchPath))
		f.Close()
		if err != nil {
			fmt.Fprintf(os.Stderr, "archctl: %v\n", err)
			return exitUserErr
		}
	}

	mode := resolver.ModeBatch
	var pr prompter.Prompter
	if *interactive {
		mode = resolver.ModeInteractive
		pr = prompter.NewCLI()
	}

	sess := session.New()
	templateengine.RegisterDefaults(sess)

	sc, err := loadEntryScript(arch, *entryScript)
	if err != nil {
		return reportDiag(err)
	}

	res := &resolver.Resolver{Mode: mode, Batch: batch, Prompter: pr}
	resolveCtx := context.New("")
	resolveWalk := walker.New(sess, arch, res)
	if err := resolveWalk.Walk(resolveCtx, sc); err != nil {
		return reportDiag(err)
	}

	sink := archive.NewDirSink(*outDir)
	gen := output.New(sess, arch, sink)
	outputWalk := walker.New(sess, arch, gen)
	if err := outputWalk.Walk(resolveCtx, sc); err != nil {
		return reportDiag(err)
	}

	return exitOK
}

func loadEntryScript(arch archive.Archive, entry string) (*script.Script, error) {
	r, err := arch.OpenRead(entry)
	if err != nil {
		return nil, diag.New(diag.KindScriptReferenceError, err.Error(), entry, 0, entry)
	}
	defer r.Close()
	return xmlload.Load(r, entry)
}

func openArchive(path string) (archive.Archive, func(), error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot open archetype %q: %w", path, err)
	}
	if info.IsDir() {
		return archive.NewDir(path), nil, nil
	}
	if strings.HasSuffix(strings.ToLower(path), ".zip") {
		z, err := archive.OpenZip(path)
		if err != nil {
			return nil, nil, err
		}
		return z, func() { z.Close() }, nil
	}
	return nil, nil, fmt.Errorf("archetype %q is neither a directory nor a .zip archive", path)
}

// reportDiag prints err and maps it to an exit code: a *diag.Diagnostic
// of kind ResolutionError/TypeError/UnsetVariable/Cancelled is a user
// error (1); anything else, including a malformed script, is internal
// (2) per spec §6.
func reportDiag(err error) int {
	fmt.Fprintf(os.Stderr, "archctl: %v\n", err)
	if d, ok := err.(*diag.Diagnostic); ok {
		switch d.KindOf {
		case diag.KindResolutionError, diag.KindTypeError, diag.KindUnsetVariable, diag.KindCancelled:
			return exitUserErr
		}
	}
	return exitInternal
}
