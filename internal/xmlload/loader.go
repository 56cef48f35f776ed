// Package xmlload implements the XML -> Script AST loader of spec §4.3:
// reads the whole document into an etree tree, validates the closed
// child-set per parent from the §6 element table, and allocates AST
// nodes, taking text content from the child elements that carry it.
//
// Grounded on github.com/funvibe/funxy/internal/modules/loader.go for
// the overall "read a source document, build a typed tree, surface a
// LoadError with file+line on the first problem" shape. The XML
// reader itself is github.com/beevik/etree, grounded on
// other_examples/30d80c3d_dpotapov-go-pages__chtml-component.go.go
// (chtml drives its template interpreter straight off etree.Element
// and etree.Token rather than unmarshalling into Go structs, which is
// exactly the shape a DSL loader needs: attribute-driven node
// construction, not struct-tag binding).
package xmlload

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"github.com/funvibe/archctl/internal/diag"
	"github.com/funvibe/archctl/internal/exprast"
	"github.com/funvibe/archctl/internal/exprparser"
	"github.com/funvibe/archctl/internal/script"
)

// admission is the closed child-set table from spec §6 (subset shown
// there is authoritative; this is its full transcription).
var admission = map[string][]string{
	"archetype-script": {"step", "input", "exec", "source", "invoke", "invoke-dir", "method", "context", "output", "help", "preset"},
	"step":             {"context", "exec", "source", "invoke", "invoke-dir", "input", "help", "preset"},
	"input":            {"text", "boolean", "enum", "list", "output", "context", "exec", "source", "invoke", "invoke-dir", "input", "step", "preset"},
	"enum":             {"context", "exec", "source", "invoke", "invoke-dir", "input", "step", "output", "help", "option", "preset"},
	"list":             {"context", "exec", "source", "invoke", "invoke-dir", "input", "step", "output", "help", "option", "preset"},
	"option":           {"context", "exec", "source", "invoke", "invoke-dir", "input", "step", "output", "help", "preset"},
	"context":          {"boolean", "list", "enum", "text"},
	"output":           {"transformation", "file", "files", "template", "templates", "model"},
	"files":            {"directory", "includes", "excludes"},
	"templates":        {"directory", "includes", "excludes", "model"},
	"includes":         {"include"},
	"excludes":         {"exclude"},
	"transformation":   {"replace"},
	"template":         {"model"},
	"model":            {"value", "list", "map"},
}

// modelContainerChildren admits the same children as "model" but is keyed
// separately because <list>/<map> are also valid under <enum>/<list>
// input declarations with a different child-set; the loader
// disambiguates by object-stack type, not by tag string alone (spec §9
// "Open questions": treat model-nesting strictly by the object stack).
var modelContainerChildren = []string{"value", "list", "map"}

func isAdmitted(parent, child string) bool {
	allowed, ok := admission[parent]
	if !ok {
		return true // leaf-ish parents (option/context/etc. already enumerated) fall through
	}
	for _, a := range allowed {
		if a == child {
			return true
		}
	}
	return false
}

// Load reads XML source from r (already opened by the caller's
// Archive), and returns a bound *script.Script. scriptPath identifies
// the document for Position/diagnostics purposes; it is not touched as
// a native filesystem path here (see pkg/archive for that boundary).
func Load(r io.Reader, scriptPath string) (*script.Script, error) {
	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(r); err != nil {
		return nil, diag.LoadError(fmt.Sprintf("malformed XML: %v", err), scriptPath, 0)
	}
	root := doc.Root()
	if root == nil {
		return nil, diag.LoadError("empty document", scriptPath, 0)
	}
	if root.Tag != "archetype-script" {
		return nil, diag.LoadError(fmt.Sprintf("root element must be <archetype-script>, got <%s>", root.Tag), scriptPath, line(root))
	}

	b := &builder{scriptPath: scriptPath}
	env, err := b.envelope(root)
	if err != nil {
		return nil, err
	}
	children, err := b.buildChildren(root, "archetype-script", modelCtxNone)
	if err != nil {
		return nil, err
	}
	return &script.Script{Envelope: env, Path: scriptPath, Children: children}, nil
}

// line extracts etree's tracked source line, when available; etree
// does not expose line numbers on Element by default, so this is a
// best-effort hook other loader code can extend once a custom reader
// settings pass populates it. 0 is used when unknown, matching spec
// §4.3's "file + line" contract degrading gracefully.
func line(e *etree.Element) int { return 0 }

type builder struct {
	scriptPath string
}

func (b *builder) pos(e *etree.Element) script.Position {
	return script.Position{Script: b.scriptPath, Line: line(e), Col: 0}
}

func (b *builder) fail(e *etree.Element, format string, args ...interface{}) error {
	return diag.LoadError(fmt.Sprintf(format, args...), b.scriptPath, line(e))
}

func (b *builder) guard(e *etree.Element) (exprast.Node, error) {
	raw := e.SelectAttrValue("if", "")
	if raw == "" {
		return nil, nil
	}
	node, err := exprparser.Parse(raw)
	if err != nil {
		return nil, b.fail(e, "invalid guard expression on <%s>: %v", e.Tag, err)
	}
	return node, nil
}

func (b *builder) envelope(e *etree.Element) (script.Envelope, error) {
	g, err := b.guard(e)
	if err != nil {
		return script.Envelope{}, err
	}
	return script.Envelope{Pos: b.pos(e), Guard: g}, nil
}

func (b *builder) requireAttr(e *etree.Element, name string) (string, error) {
	v := e.SelectAttrValue(name, "")
	if v == "" && e.SelectAttr(name) == nil {
		return "", b.fail(e, "<%s> missing required attribute %q", e.Tag, name)
	}
	return v, nil
}

func (b *builder) boolAttr(e *etree.Element, name string, def bool) bool {
	a := e.SelectAttr(name)
	if a == nil {
		return def
	}
	v, err := strconv.ParseBool(a.Value)
	if err != nil {
		return def
	}
	return v
}

func (b *builder) intAttr(e *etree.Element, name string, def int) int {
	a := e.SelectAttr(name)
	if a == nil {
		return def
	}
	v, err := strconv.Atoi(a.Value)
	if err != nil {
		return def
	}
	return v
}

// modelCtx disambiguates whether <list>/<map> children currently being
// built belong to a Model subtree or to an Enum/List input declaration
// — resolved by the object stack (what buildChildren is currently
// constructing), never by the bare tag string (spec §9 open question).
type modelCtx int

const (
	modelCtxNone modelCtx = iota
	modelCtxModel
)

// buildChildren validates and constructs every admitted child of e
// (whose tag is parentTag), in document order.
func (b *builder) buildChildren(e *etree.Element, parentTag string, mctx modelCtx) ([]script.Node, error) {
	var out []script.Node
	for _, child := range e.ChildElements() {
		if !isAdmitted(parentTag, child.Tag) {
			return nil, b.fail(child, "<%s> is not a valid child of <%s>", child.Tag, parentTag)
		}
		node, err := b.buildNode(child, mctx)
		if err != nil {
			return nil, err
		}
		if node != nil {
			out = append(out, node)
		}
	}
	return out, nil
}

func (b *builder) buildNode(e *etree.Element, mctx modelCtx) (script.Node, error) {
	switch e.Tag {
	case "step":
		return b.buildStep(e)
	case "input":
		return b.buildInput(e)
	case "text", "boolean", "enum", "list":
		if mctx == modelCtxModel {
			return b.buildModelList(e) // <list> under a <model> subtree
		}
		return b.buildInputKind(e)
	case "option":
		return b.buildOption(e)
	case "context":
		return b.buildContext(e)
	case "output":
		return b.buildOutput(e)
	case "file":
		return b.buildFile(e)
	case "files":
		return b.buildFiles(e)
	case "template":
		return b.buildTemplate(e)
	case "templates":
		return b.buildTemplates(e)
	case "transformation":
		return b.buildTransformation(e)
	case "preset":
		return b.buildPreset(e)
	case "model":
		return b.buildModelRoot(e)
	case "map":
		return b.buildModelMap(e)
	case "value":
		return b.buildModelValue(e)
	case "invoke", "invoke-dir", "exec", "source":
		return b.buildInvoke(e)
	case "method":
		return b.buildMethod(e)
	case "help", "directory", "includes", "excludes", "include", "exclude", "replace":
		// Leaves handled by their structural parent (buildFiles,
		// buildTransformation, etc.); nothing to build standalone.
		return nil, nil
	default:
		return nil, b.fail(e, "unknown element <%s>", e.Tag)
	}
}

func (b *builder) buildStep(e *etree.Element) (script.Node, error) {
	env, err := b.envelope(e)
	if err != nil {
		return nil, err
	}
	children, err := b.buildChildren(e, "step", modelCtxNone)
	if err != nil {
		return nil, err
	}
	return &script.Step{Envelope: env, Children: children}, nil
}

func (b *builder) buildContext(e *etree.Element) (script.Node, error) {
	env, err := b.envelope(e)
	if err != nil {
		return nil, err
	}
	children, err := b.buildChildren(e, "context", modelCtxNone)
	if err != nil {
		return nil, err
	}
	return &script.ContextBlock{Envelope: env, Children: children}, nil
}

func (b *builder) buildMethod(e *etree.Element) (script.Node, error) {
	env, err := b.envelope(e)
	if err != nil {
		return nil, err
	}
	name, err := b.requireAttr(e, "name")
	if err != nil {
		return nil, err
	}
	children, err := b.buildChildren(e, "archetype-script", modelCtxNone)
	if err != nil {
		return nil, err
	}
	return &script.Method{Envelope: env, Name: name, Children: children}, nil
}

func (b *builder) buildInvoke(e *etree.Element) (script.Node, error) {
	env, err := b.envelope(e)
	if err != nil {
		return nil, err
	}
	var kind script.InvokeKind
	switch e.Tag {
	case "invoke":
		kind = script.InvokeScript
	case "invoke-dir":
		kind = script.InvokeDir
	case "exec":
		kind = script.InvokeExec
	case "source":
		kind = script.InvokeSource
	}
	src := e.SelectAttrValue("src", "")
	url := e.SelectAttrValue("url", "")
	if src == "" && url == "" {
		return nil, b.fail(e, "<%s> requires src or url", e.Tag)
	}
	method := e.SelectAttrValue("method", "")
	return &script.Invoke{Envelope: env, Kind: kind, Src: src, URL: url, Method: method}, nil
}

// buildInputKind handles the bare <text>/<boolean>/<enum>/<list>
// elements that appear directly under <context> (spec §6 "context"
// admits boolean/list/enum/text). These share the Input node shape but
// are not resolver-visited the way a declared <input> is — see
// script.ContextBlock's doc comment.
func (b *builder) buildInputKind(e *etree.Element) (script.Node, error) {
	env, err := b.envelope(e)
	if err != nil {
		return nil, err
	}
	in := &script.Input{Envelope: env, Kind: kindOf(e.Tag), Global: true, Optional: true}
	in.Name = e.SelectAttrValue("name", "")
	in.Default = b.parseLiteralOrNil(e.SelectAttrValue("default", ""))
	if e.Tag == "list" {
		in.Min = b.intAttr(e, "min", 0)
		in.Max = b.intAttr(e, "max", 0)
	}
	if e.Tag == "text" {
		in.Placeholder = e.SelectAttrValue("prompt", "")
	}
	if err := b.collectOptionsAndChildren(e, in); err != nil {
		return nil, err
	}
	return in, nil
}

func kindOf(tag string) script.InputKind {
	switch tag {
	case "boolean":
		return script.KindBoolean
	case "text":
		return script.KindText
	case "enum":
		return script.KindEnum
	case "list":
		return script.KindList
	default:
		return script.KindText
	}
}

func (b *builder) buildInput(e *etree.Element) (script.Node, error) {
	env, err := b.envelope(e)
	if err != nil {
		return nil, err
	}
	name, err := b.requireAttr(e, "name")
	if err != nil {
		return nil, err
	}
	in := &script.Input{
		Envelope:  env,
		Name:      name,
		Label:     e.SelectAttrValue("label", name),
		Help:      strings.TrimSpace(childText(e, "help")),
		Optional:  b.boolAttr(e, "optional", false),
		Global:    b.boolAttr(e, "global", false),
		Prompt:    e.SelectAttrValue("prompt", ""),
		Normalize: e.SelectAttrValue("normalize", ""),
	}
	// The kind is carried by exactly one of the admitted nested
	// text/boolean/enum/list elements (spec §3 "kind in {Boolean,
	// Text(placeholder?), Enum, List(min,max), Option(value)}").
	found := false
	for _, child := range e.ChildElements() {
		switch child.Tag {
		case "boolean", "text", "enum", "list":
			if found {
				return nil, b.fail(child, "<input> may declare only one of boolean/text/enum/list")
			}
			found = true
			in.Kind = kindOf(child.Tag)
			in.Default = b.parseLiteralOrNil(child.SelectAttrValue("default", e.SelectAttrValue("default", "")))
			if child.Tag == "text" {
				in.Placeholder = child.SelectAttrValue("prompt", "")
			}
			if child.Tag == "list" {
				in.Min = b.intAttr(child, "min", 0)
				in.Max = b.intAttr(child, "max", 0)
			}
			if err := b.collectOptionsAndChildren(child, in); err != nil {
				return nil, err
			}
		}
	}
	if !found {
		in.Default = b.parseLiteralOrNil(e.SelectAttrValue("default", ""))
	}
	// Remaining admitted siblings (output/context/exec/source/input/step)
	// become the input's Children, walked after binding (spec §4.5).
	for _, child := range e.ChildElements() {
		switch child.Tag {
		case "boolean", "text", "enum", "list", "option", "help":
			continue
		}
		if !isAdmitted("input", child.Tag) {
			return nil, b.fail(child, "<%s> is not a valid child of <input>", child.Tag)
		}
		node, err := b.buildNode(child, modelCtxNone)
		if err != nil {
			return nil, err
		}
		if node != nil {
			in.Children = append(in.Children, node)
		}
	}
	return in, nil
}

func (b *builder) collectOptionsAndChildren(kindElem *etree.Element, in *script.Input) error {
	for _, child := range kindElem.ChildElements() {
		if child.Tag == "option" {
			opt, err := b.buildOption(child)
			if err != nil {
				return err
			}
			in.Options = append(in.Options, opt.(*script.Option))
			continue
		}
		if child.Tag == "help" {
			continue
		}
		if !isAdmitted(kindElem.Tag, child.Tag) {
			return b.fail(child, "<%s> is not a valid child of <%s>", child.Tag, kindElem.Tag)
		}
		node, err := b.buildNode(child, modelCtxNone)
		if err != nil {
			return err
		}
		if node != nil {
			in.Children = append(in.Children, node)
		}
	}
	return nil
}

// buildPreset handles <preset path="..." value="..."/>. value is taken
// as a literal unless it contains a "${...}" reference, in which case
// it is parsed as a guard-grammar expression (spec §3 "Preset{path,
// value} (literal or expression-dynamic)").
func (b *builder) buildPreset(e *etree.Element) (script.Node, error) {
	env, err := b.envelope(e)
	if err != nil {
		return nil, err
	}
	path, err := b.requireAttr(e, "path")
	if err != nil {
		return nil, err
	}
	raw, err := b.requireAttr(e, "value")
	if err != nil {
		return nil, err
	}
	pv := script.PresetValue{Literal: raw, IsLiteral: true}
	if strings.Contains(raw, "${") {
		if node, perr := exprparser.Parse(raw); perr == nil {
			pv = script.PresetValue{Expr: node, IsLiteral: false}
		}
	}
	return &script.Preset{Envelope: env, Path: path, Value: pv}, nil
}

func (b *builder) buildOption(e *etree.Element) (script.Node, error) {
	env, err := b.envelope(e)
	if err != nil {
		return nil, err
	}
	value, err := b.requireAttr(e, "value")
	if err != nil {
		return nil, err
	}
	children, err := b.buildChildren(e, "option", modelCtxNone)
	if err != nil {
		return nil, err
	}
	return &script.Option{Envelope: env, Value: value, Children: children}, nil
}

func (b *builder) buildOutput(e *etree.Element) (script.Node, error) {
	env, err := b.envelope(e)
	if err != nil {
		return nil, err
	}
	children, err := b.buildChildren(e, "output", modelCtxModel)
	if err != nil {
		return nil, err
	}
	return &script.Output{Envelope: env, Children: children}, nil
}

func (b *builder) buildFile(e *etree.Element) (script.Node, error) {
	env, err := b.envelope(e)
	if err != nil {
		return nil, err
	}
	source, err := b.requireAttr(e, "source")
	if err != nil {
		return nil, err
	}
	target, err := b.requireAttr(e, "target")
	if err != nil {
		return nil, err
	}
	return &script.File{Envelope: env, Source: source, Target: target}, nil
}

func (b *builder) buildFiles(e *etree.Element) (script.Node, error) {
	env, err := b.envelope(e)
	if err != nil {
		return nil, err
	}
	for _, child := range e.ChildElements() {
		if !isAdmitted("files", child.Tag) {
			return nil, b.fail(child, "<%s> is not a valid child of <files>", child.Tag)
		}
	}
	f := &script.Files{
		Envelope:        env,
		Directory:       childText(e, "directory"),
		Includes:        childTextList(e, "includes", "include"),
		Excludes:        childTextList(e, "excludes", "exclude"),
		Transformations: splitCSV(e.SelectAttrValue("transformations", "")),
	}
	return f, nil
}

func (b *builder) buildTemplate(e *etree.Element) (script.Node, error) {
	env, err := b.envelope(e)
	if err != nil {
		return nil, err
	}
	source, err := b.requireAttr(e, "source")
	if err != nil {
		return nil, err
	}
	target, err := b.requireAttr(e, "target")
	if err != nil {
		return nil, err
	}
	engine := e.SelectAttrValue("engine", "")
	if engine == "" {
		return nil, b.fail(e, "<template> requires an engine attribute")
	}
	t := &script.Template{Envelope: env, Engine: engine, Source: source, Target: target}
	if modelElem := e.SelectElement("model"); modelElem != nil {
		m, err := b.buildModelRoot(modelElem)
		if err != nil {
			return nil, err
		}
		t.Model = m.(*script.ModelValue)
	}
	return t, nil
}

func (b *builder) buildTemplates(e *etree.Element) (script.Node, error) {
	env, err := b.envelope(e)
	if err != nil {
		return nil, err
	}
	engine := e.SelectAttrValue("engine", "")
	if engine == "" {
		return nil, b.fail(e, "<templates> requires an engine attribute")
	}
	for _, child := range e.ChildElements() {
		if !isAdmitted("templates", child.Tag) {
			return nil, b.fail(child, "<%s> is not a valid child of <templates>", child.Tag)
		}
	}
	t := &script.Templates{
		Envelope:        env,
		Engine:          engine,
		Directory:       childText(e, "directory"),
		Includes:        childTextList(e, "includes", "include"),
		Excludes:        childTextList(e, "excludes", "exclude"),
		Transformations: splitCSV(e.SelectAttrValue("transformations", "")),
	}
	if modelElem := e.SelectElement("model"); modelElem != nil {
		m, err := b.buildModelRoot(modelElem)
		if err != nil {
			return nil, err
		}
		t.Model = m.(*script.ModelValue)
	}
	return t, nil
}

func (b *builder) buildTransformation(e *etree.Element) (script.Node, error) {
	env, err := b.envelope(e)
	if err != nil {
		return nil, err
	}
	id, err := b.requireAttr(e, "id")
	if err != nil {
		return nil, err
	}
	target := script.TransformBoth
	switch e.SelectAttrValue("target", "both") {
	case "path":
		target = script.TransformPath
	case "content":
		target = script.TransformContent
	}
	tr := &script.Transformation{Envelope: env, ID: id, Target: target}
	for _, child := range e.ChildElements() {
		if child.Tag != "replace" {
			return nil, b.fail(child, "<%s> is not a valid child of <transformation>", child.Tag)
		}
		regex, err := b.requireAttr(child, "regex")
		if err != nil {
			return nil, err
		}
		replacement := child.SelectAttrValue("replacement", "")
		tr.Replaces = append(tr.Replaces, script.Replace{Regex: regex, Replacement: replacement})
	}
	return tr, nil
}

// buildModelRoot wraps a <model>/<template><model> root as a
// ModelValue container so Template.Model has a single uniform type;
// its own Key/URL/etc. fields are unused, only Children matters.
func (b *builder) buildModelRoot(e *etree.Element) (script.Node, error) {
	env, err := b.envelope(e)
	if err != nil {
		return nil, err
	}
	root := &script.ModelValue{Envelope: env, Order: script.DefaultOrder}
	for _, child := range e.ChildElements() {
		node, err := b.buildModelChild(child)
		if err != nil {
			return nil, err
		}
		root.Children = append(root.Children, node)
	}
	return root, nil
}

func (b *builder) buildModelChild(e *etree.Element) (script.ModelNode, error) {
	switch e.Tag {
	case "value":
		n, err := b.buildModelValue(e)
		if err != nil {
			return nil, err
		}
		return n.(*script.ModelValue), nil
	case "list":
		n, err := b.buildModelList(e)
		if err != nil {
			return nil, err
		}
		return n.(*script.ModelList), nil
	case "map":
		n, err := b.buildModelMap(e)
		if err != nil {
			return nil, err
		}
		return n.(*script.ModelMap), nil
	default:
		return nil, b.fail(e, "<%s> is not a valid model node", e.Tag)
	}
}

func (b *builder) buildModelValue(e *etree.Element) (script.Node, error) {
	env, err := b.envelope(e)
	if err != nil {
		return nil, err
	}
	return &script.ModelValue{
		Envelope: env,
		Key:      e.SelectAttrValue("key", ""),
		URL:      e.SelectAttrValue("url", ""),
		File:     e.SelectAttrValue("file", ""),
		Template: e.SelectAttrValue("template", ""),
		Inline:   e.SelectAttrValue("inline", e.Text()),
		Order:    b.intAttr(e, "order", script.DefaultOrder),
	}, nil
}

func (b *builder) buildModelList(e *etree.Element) (script.Node, error) {
	env, err := b.envelope(e)
	if err != nil {
		return nil, err
	}
	l := &script.ModelList{Envelope: env, Key: e.SelectAttrValue("key", ""), Order: b.intAttr(e, "order", script.DefaultOrder)}
	for _, child := range e.ChildElements() {
		node, err := b.buildModelChild(child)
		if err != nil {
			return nil, err
		}
		l.Children = append(l.Children, node)
	}
	return l, nil
}

func (b *builder) buildModelMap(e *etree.Element) (script.Node, error) {
	env, err := b.envelope(e)
	if err != nil {
		return nil, err
	}
	m := &script.ModelMap{Envelope: env, Key: e.SelectAttrValue("key", ""), Order: b.intAttr(e, "order", script.DefaultOrder)}
	for _, child := range e.ChildElements() {
		node, err := b.buildModelChild(child)
		if err != nil {
			return nil, err
		}
		m.Children = append(m.Children, node)
	}
	return m, nil
}

// parseLiteralOrNil parses a default="" attribute as a guard-expression
// literal/variable, per spec §4.6 ("the declared default (expression-
// evaluated against current context)"). An empty attribute yields nil
// (no default).
func (b *builder) parseLiteralOrNil(raw string) exprast.Node {
	if raw == "" {
		return nil
	}
	node, err := exprparser.Parse(raw)
	if err != nil {
		return &exprast.Literal{Kind: exprast.LitString, Str: raw, Raw: raw}
	}
	return node
}

func childText(e *etree.Element, tag string) string {
	c := e.SelectElement(tag)
	if c == nil {
		return ""
	}
	return strings.TrimSpace(c.Text())
}

func childTextList(e *etree.Element, containerTag, itemTag string) []string {
	container := e.SelectElement(containerTag)
	if container == nil {
		return nil
	}
	var out []string
	for _, item := range container.SelectElements(itemTag) {
		out = append(out, strings.TrimSpace(item.Text()))
	}
	return out
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
