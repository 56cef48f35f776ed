// Package output implements the §4.8 Output generator: the second
// Walker pass, driven over a Context already fully resolved by
// internal/resolver, that copies files, expands glob sets, renders
// templates, and merges per-template TemplateModel data into the
// scope handed to a registered session.TemplateEngine.
//
// Grounded on github.com/funvibe/funxy/internal/evaluator's module-
// output writing (it renders source and writes through an explicit
// sink rather than touching os directly) plus
// github.com/standardbeagle/lci's direct dependency on
// github.com/bmatcuk/doublestar/v4 for the Files/Templates glob
// expansion, a library nothing else in this module's own teacher
// brings in.
package output

import (
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/funvibe/archctl/internal/context"
	"github.com/funvibe/archctl/internal/diag"
	"github.com/funvibe/archctl/internal/script"
	"github.com/funvibe/archctl/internal/session"
	"github.com/funvibe/archctl/internal/walker"
	"github.com/funvibe/archctl/pkg/archive"
)

// Generator implements walker.Hooks for the output-generation pass
// (spec §4.2 data flow: "a second Walker pass drives the Output
// generator" over inputs a prior resolver pass already bound).
type Generator struct {
	Session *session.Session
	Archive archive.Archive
	Sink    archive.Sink

	transforms    map[string]*script.Transformation
	modelChildren []script.ModelNode
}

// New returns a Generator writing through sink, reading sources from
// arch, and rendering templates through engines registered on sess.
func New(sess *session.Session, arch archive.Archive, sink archive.Sink) *Generator {
	return &Generator{
		Session:    sess,
		Archive:    arch,
		Sink:       sink,
		transforms: make(map[string]*script.Transformation),
	}
}

// VisitInput is a no-op: by the time this pass runs, every Input's
// value is already bound in ctx by a prior resolver walk, so guards
// downstream of it observe the right value without re-prompting.
func (g *Generator) VisitInput(ctx *context.Context, in *script.Input) error {
	return nil
}

// VisitOutput dispatches each of an <output> block's children. The
// Walker never descends into Output's children itself (spec §4.5:
// Output/Input subtrees are wholly owned by Hooks), so this method is
// responsible for walking them.
func (g *Generator) VisitOutput(ctx *context.Context, out *script.Output) error {
	for _, n := range out.Children {
		if err := g.visitOutputChild(ctx, n); err != nil {
			return err
		}
	}
	return nil
}

func (g *Generator) visitOutputChild(ctx *context.Context, n script.Node) error {
	switch t := n.(type) {
	case *script.Transformation:
		g.transforms[t.ID] = t
		return nil
	case *script.File:
		return g.copyFile(ctx, t)
	case *script.Files:
		return g.copyFiles(ctx, t)
	case *script.Template:
		return g.renderTemplate(ctx, t)
	case *script.Templates:
		return g.renderTemplates(ctx, t)
	case *script.ModelValue:
		// A bare <model> directly under <output> (admitted per §6's
		// element table) merges into the shared scope unconditionally,
		// not tied to any one template's render.
		g.mergeModel(t)
		return nil
	default:
		return fmt.Errorf("output: node kind %T not valid under <output>", n)
	}
}

func (g *Generator) copyFile(ctx *context.Context, f *script.File) error {
	content, err := g.readArchiveFile(f.Source)
	if err != nil {
		pos := f.Position()
		return diag.New(diag.KindOutputError, err.Error(), pos.Script, pos.Line, f.Source)
	}
	target, newContent, err := g.applyTransformations(nil, f.Target, content, ctx.Snapshot())
	if err != nil {
		return err
	}
	if err := g.Sink.WriteFile(target, newContent); err != nil {
		pos := f.Position()
		return diag.New(diag.KindOutputError, err.Error(), pos.Script, pos.Line, target)
	}
	return nil
}

func (g *Generator) copyFiles(ctx *context.Context, fs *script.Files) error {
	matched, err := g.matchFiles(fs.Directory, fs.Includes, fs.Excludes)
	if err != nil {
		pos := fs.Position()
		return diag.New(diag.KindOutputError, err.Error(), pos.Script, pos.Line, fs.Directory)
	}
	vars := ctx.Snapshot()
	prefix := trimSlashes(fs.Directory)
	if prefix != "" {
		prefix += "/"
	}
	for _, src := range matched {
		content, err := g.readArchiveFile(src)
		if err != nil {
			pos := fs.Position()
			return diag.New(diag.KindOutputError, err.Error(), pos.Script, pos.Line, src)
		}
		rel := strings.TrimPrefix(src, prefix)
		target, newContent, err := g.applyTransformations(fs.Transformations, rel, content, vars)
		if err != nil {
			return err
		}
		if err := g.Sink.WriteFile(target, newContent); err != nil {
			pos := fs.Position()
			return diag.New(diag.KindOutputError, err.Error(), pos.Script, pos.Line, target)
		}
	}
	return nil
}

func (g *Generator) renderTemplate(ctx *context.Context, t *script.Template) error {
	pos := t.Position()
	engine, ok := g.Session.Engine(t.Engine)
	if !ok {
		return diag.New(diag.KindOutputError, fmt.Sprintf("unregistered template engine %q", t.Engine), pos.Script, pos.Line, t.Source)
	}
	if t.Model != nil {
		g.mergeModel(t.Model)
	}
	src, err := g.readArchiveFile(t.Source)
	if err != nil {
		return diag.New(diag.KindOutputError, err.Error(), pos.Script, pos.Line, t.Source)
	}
	rendered, err := engine.Render(string(src), g.Scope())
	if err != nil {
		return diag.New(diag.KindOutputError, err.Error(), pos.Script, pos.Line, t.Source)
	}
	target, content, err := g.applyTransformations(nil, t.Target, []byte(rendered), ctx.Snapshot())
	if err != nil {
		return err
	}
	if err := g.Sink.WriteFile(target, content); err != nil {
		return diag.New(diag.KindOutputError, err.Error(), pos.Script, pos.Line, target)
	}
	return nil
}

func (g *Generator) renderTemplates(ctx *context.Context, t *script.Templates) error {
	pos := t.Position()
	engine, ok := g.Session.Engine(t.Engine)
	if !ok {
		return diag.New(diag.KindOutputError, fmt.Sprintf("unregistered template engine %q", t.Engine), pos.Script, pos.Line, t.Directory)
	}
	if t.Model != nil {
		g.mergeModel(t.Model)
	}
	matched, err := g.matchFiles(t.Directory, t.Includes, t.Excludes)
	if err != nil {
		return diag.New(diag.KindOutputError, err.Error(), pos.Script, pos.Line, t.Directory)
	}
	vars := ctx.Snapshot()
	scope := g.Scope()
	prefix := trimSlashes(t.Directory)
	if prefix != "" {
		prefix += "/"
	}
	for _, src := range matched {
		source, err := g.readArchiveFile(src)
		if err != nil {
			return diag.New(diag.KindOutputError, err.Error(), pos.Script, pos.Line, src)
		}
		rendered, err := engine.Render(string(source), scope)
		if err != nil {
			return diag.New(diag.KindOutputError, err.Error(), pos.Script, pos.Line, src)
		}
		rel := strings.TrimPrefix(src, prefix)
		target, content, err := g.applyTransformations(t.Transformations, rel, []byte(rendered), vars)
		if err != nil {
			return err
		}
		if err := g.Sink.WriteFile(target, content); err != nil {
			return diag.New(diag.KindOutputError, err.Error(), pos.Script, pos.Line, target)
		}
	}
	return nil
}

func (g *Generator) readArchiveFile(path string) ([]byte, error) {
	r, err := g.Archive.OpenRead(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

// matchFiles lists every archive entry under directory whose path
// relative to directory matches Includes (all, when empty) and none
// of Excludes, using doublestar so a pattern like "**/*.go" behaves
// the way the reference dependency pack's own consumers expect.
func (g *Generator) matchFiles(directory string, includes, excludes []string) ([]string, error) {
	all, err := g.Archive.List()
	if err != nil {
		return nil, err
	}
	prefix := trimSlashes(directory)
	if prefix != "" {
		prefix += "/"
	}
	var matched []string
	for _, p := range all {
		if !strings.HasPrefix(p, prefix) {
			continue
		}
		rel := strings.TrimPrefix(p, prefix)
		if !includeMatches(includes, rel) || excludeMatches(excludes, rel) {
			continue
		}
		matched = append(matched, p)
	}
	sort.Strings(matched)
	return matched, nil
}

func includeMatches(patterns []string, rel string) bool {
	if len(patterns) == 0 {
		return true
	}
	for _, pat := range patterns {
		if ok, _ := doublestar.Match(pat, rel); ok {
			return true
		}
	}
	return false
}

func excludeMatches(patterns []string, rel string) bool {
	for _, pat := range patterns {
		if ok, _ := doublestar.Match(pat, rel); ok {
			return true
		}
	}
	return false
}

func trimSlashes(s string) string {
	return strings.Trim(s, "/")
}

// applyTransformations runs path/content through each named
// Transformation's replace pairs in declaration order (spec §4.8), a
// Replacement string itself eligible for ${var} interpolation from
// the current context snapshot.
func (g *Generator) applyTransformations(ids []string, path string, content []byte, vars map[string]string) (string, []byte, error) {
	for _, id := range ids {
		t, ok := g.transforms[id]
		if !ok {
			return "", nil, diag.New(diag.KindOutputError, fmt.Sprintf("unknown transformation %q", id), "", 0, id)
		}
		for _, rep := range t.Replaces {
			re, err := regexp.Compile(rep.Regex)
			if err != nil {
				return "", nil, diag.New(diag.KindOutputError, fmt.Sprintf("invalid regex in transformation %q: %v", id, err), "", 0, id)
			}
			replacement := interpolate(rep.Replacement, vars)
			if t.Target == script.TransformPath || t.Target == script.TransformBoth {
				path = re.ReplaceAllString(path, replacement)
			}
			if t.Target == script.TransformContent || t.Target == script.TransformBoth {
				content = re.ReplaceAll(content, []byte(replacement))
			}
		}
	}
	return path, content, nil
}

var interpVar = regexp.MustCompile(`\$\{([A-Za-z0-9_.]+)\}`)

func interpolate(s string, vars map[string]string) string {
	return interpVar.ReplaceAllStringFunc(s, func(m string) string {
		name := interpVar.FindStringSubmatch(m)[1]
		if v, ok := vars[name]; ok {
			return v
		}
		return m
	})
}

// mergeModel appends m's children to the accumulated model tree (spec
// §4.8 "each template merge contributes to a single accumulated
// model"); Scope re-sorts and materializes on every call, so merge
// order across a walk's several templates is preserved.
func (g *Generator) mergeModel(m *script.ModelValue) {
	if m == nil {
		return
	}
	g.modelChildren = append(g.modelChildren, m.Children...)
}

// Scope materializes the accumulated model into the map a
// session.TemplateEngine renders against.
func (g *Generator) Scope() map[string]interface{} {
	return g.materializeChildren(g.modelChildren)
}

// materializeChildren groups nodes by ModelKey, sorts each group
// stably by ModelOrder, and collapses a single-member group to its
// bare value or a multi-member group (repeated key across merges, spec
// §8 scenario 6) to an ordered list. Empty lists/maps are dropped.
func (g *Generator) materializeChildren(nodes []script.ModelNode) map[string]interface{} {
	groups := make(map[string][]script.ModelNode)
	var order []string
	for _, n := range nodes {
		k := n.ModelKey()
		if _, seen := groups[k]; !seen {
			order = append(order, k)
		}
		groups[k] = append(groups[k], n)
	}
	out := make(map[string]interface{})
	for _, k := range order {
		group := groups[k]
		sort.SliceStable(group, func(i, j int) bool { return group[i].ModelOrder() < group[j].ModelOrder() })
		if len(group) == 1 {
			v := g.materializeNode(group[0])
			if isEmptyScopeValue(v) {
				continue
			}
			out[k] = v
			continue
		}
		var list []interface{}
		for _, n := range group {
			v := g.materializeNode(n)
			if isEmptyScopeValue(v) {
				continue
			}
			list = append(list, v)
		}
		if len(list) == 0 {
			continue
		}
		out[k] = list
	}
	return out
}

func (g *Generator) materializeNode(n script.ModelNode) interface{} {
	switch t := n.(type) {
	case *script.ModelValue:
		s, err := g.materializeValue(t)
		if err != nil {
			return ""
		}
		return s
	case *script.ModelList:
		return g.materializeList(t.Children)
	case *script.ModelMap:
		return g.materializeChildren(t.Children)
	default:
		return nil
	}
}

func (g *Generator) materializeList(nodes []script.ModelNode) []interface{} {
	sorted := append([]script.ModelNode(nil), nodes...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].ModelOrder() < sorted[j].ModelOrder() })
	var out []interface{}
	for _, n := range sorted {
		v := g.materializeNode(n)
		if isEmptyScopeValue(v) {
			continue
		}
		out = append(out, v)
	}
	return out
}

// materializeValue resolves a leaf ModelValue's rendered string from
// exactly one of its Inline/File/Template sources (spec §3). URL is an
// external-fetch concern (spec §1 "archive I/O ... out of scope" for
// the CORE) and resolves to empty here.
func (g *Generator) materializeValue(v *script.ModelValue) (string, error) {
	if v.Inline != "" {
		return v.Inline, nil
	}
	if v.File != "" {
		b, err := g.readArchiveFile(v.File)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	if v.Template != "" {
		b, err := g.readArchiveFile(v.Template)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	return "", nil
}

func isEmptyScopeValue(v interface{}) bool {
	switch t := v.(type) {
	case []interface{}:
		return len(t) == 0
	case map[string]interface{}:
		return len(t) == 0
	default:
		return false
	}
}

var _ walker.Hooks = (*Generator)(nil)
