// Package walker implements the depth-first, visitor-driven traversal
// of spec §4.5: guard evaluation, invoke/source/exec expansion through
// a Session-owned script cache with cycle detection, and context scope
// management, generic over what a particular consumer (input resolver,
// output generator) wants to do at an Input or Output node.
//
// Grounded on github.com/funvibe/funxy/internal/evaluator's Eval(node,
// env) dispatch married to the Session's invoke-cache shape borrowed
// from internal/modules/loader.go, plus the standard library's
// filepath.WalkDir sentinel-error idiom (fs.SkipDir/fs.SkipAll) for
// early-exit control flow, per spec §9 "Dynamic dispatch: one visitor
// per traversal purpose, each a set of per-kind handlers with
// VisitResult return."
package walker

import (
	"errors"
	"fmt"
	"strings"

	"github.com/funvibe/archctl/internal/context"
	"github.com/funvibe/archctl/internal/diag"
	"github.com/funvibe/archctl/internal/exprparser"
	"github.com/funvibe/archctl/internal/script"
	"github.com/funvibe/archctl/internal/session"
	"github.com/funvibe/archctl/internal/value"
	"github.com/funvibe/archctl/internal/xmlload"
	"github.com/funvibe/archctl/pkg/archive"
)

// ErrSkipSubtree requests that the current node's children not be
// visited, without aborting the rest of the walk — mirrors fs.SkipDir.
var ErrSkipSubtree = errors.New("walker: skip subtree")

// ErrTerminate requests the walk stop entirely — mirrors fs.SkipAll.
var ErrTerminate = errors.New("walker: terminate")

// Hooks lets a particular consumer (resolver, output generator) plug
// into the parts of the traversal that are not
// shared: binding an Input to a value, and acting on an Output block.
// Any other node kind (Step, ContextBlock, Preset, Invoke, Method) is
// handled identically by every consumer and is never delegated.
type Hooks interface {
	// VisitInput is called once per Input node, after its guard has
	// passed. The implementation is responsible for writing the bound
	// value into ctx (ctx.Put) and registering its alias before
	// returning, so guards in the input's own children observe it.
	VisitInput(ctx *context.Context, in *script.Input) error

	// VisitOutput is called once per Output node, after its guard has
	// passed. A Hooks that never generates output (e.g. the resolver)
	// can return ErrSkipSubtree unconditionally.
	VisitOutput(ctx *context.Context, out *script.Output) error
}

// Walker drives one traversal of a Script tree. Session and Archive
// are shared across every invoke this walk expands into.
type Walker struct {
	Session *session.Session
	Archive archive.Archive
	Hooks   Hooks
}

// New returns a Walker over sess/arch, delegating Input/Output nodes
// to hooks.
func New(sess *session.Session, arch archive.Archive, hooks Hooks) *Walker {
	return &Walker{Session: sess, Archive: arch, Hooks: hooks}
}

// Walk traverses sc's top-level children against ctx.
func (w *Walker) Walk(ctx *context.Context, sc *script.Script) error {
	return w.walkChildren(ctx, sc.Children)
}

func (w *Walker) walkChildren(ctx *context.Context, children []script.Node) error {
	for _, n := range children {
		if err := w.walkNode(ctx, n); err != nil {
			if errors.Is(err, ErrSkipSubtree) {
				continue
			}
			return err
		}
	}
	return nil
}

// guardPasses evaluates n's guard, if any, against ctx's current
// snapshot. A false guard silently drops the node and its subtree
// (spec §4.5 "false skips its subtree").
func (w *Walker) guardPasses(ctx *context.Context, n script.Node) (bool, error) {
	g := n.GuardExpr()
	if g == nil {
		return true, nil
	}
	ok, err := exprparser.EvalBool(g, ctx.Snapshot())
	if err != nil {
		pos := n.Position()
		return false, diag.New(diag.KindTypeError, err.Error(), pos.Script, pos.Line, "")
	}
	return ok, nil
}

func (w *Walker) walkNode(ctx *context.Context, n script.Node) error {
	ok, err := w.guardPasses(ctx, n)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	switch node := n.(type) {
	case *script.Step:
		return w.walkChildren(ctx, node.Children)
	case *script.Inputs:
		return w.walkChildren(ctx, node.Children)
	case *script.Method:
		return w.walkChildren(ctx, node.Children)
	case *script.ContextBlock:
		return w.walkContext(ctx, node)
	case *script.Input:
		return w.walkInput(ctx, node)
	case *script.Preset:
		return w.walkPreset(ctx, node)
	case *script.Output:
		if err := w.Hooks.VisitOutput(ctx, node); err != nil {
			return terminalOrSkip(err)
		}
		return nil
	case *script.Invoke:
		return w.walkInvoke(ctx, node)
	default:
		return fmt.Errorf("walker: node kind %T not reachable at this scope", n)
	}
}

// terminalOrSkip lets a Hooks callback request SkipSubtree (absorbed
// here, since Output/Input have no further CORE-walked children of
// their own beyond what Hooks already owns) or Terminate (propagated).
func terminalOrSkip(err error) error {
	if errors.Is(err, ErrSkipSubtree) {
		return nil
	}
	return err
}

func (w *Walker) walkInput(ctx *context.Context, in *script.Input) error {
	if err := w.Hooks.VisitInput(ctx, in); err != nil {
		if errors.Is(err, ErrSkipSubtree) {
			return nil
		}
		return err
	}
	path := ctx.Path(in.Name)
	ctx.Push(in.Name, in.Kind == script.KindList || in.Kind == script.KindEnum)
	defer ctx.Pop()
	if err := w.walkChildren(ctx, in.Children); err != nil {
		return err
	}
	for _, opt := range in.Options {
		if err := w.walkOption(ctx, in, opt, path); err != nil {
			return err
		}
	}
	return nil
}

// walkOption visits opt's children only when it is the option
// currently bound to its owning input (spec §8 scenario 2: "only the
// kotlin option's subtree emits"). path is the input's own context
// path, computed before the input's scope was pushed.
func (w *Walker) walkOption(ctx *context.Context, in *script.Input, opt *script.Option, path string) error {
	ok, err := w.guardPasses(ctx, opt)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	bound, has := ctx.Get(path)
	if !has {
		return nil
	}
	selected, err := optionSelected(bound, opt.Value, in.Kind)
	if err != nil {
		return err
	}
	if !selected {
		return nil
	}
	return w.walkChildren(ctx, opt.Children)
}

func optionSelected(bound value.Value, optValue string, kind script.InputKind) (bool, error) {
	if kind == script.KindList {
		items, err := bound.AsList()
		if err != nil {
			return false, err
		}
		for _, it := range items {
			if it == optValue {
				return true, nil
			}
		}
		return false, nil
	}
	s, err := bound.AsString()
	if err != nil {
		return false, err
	}
	return s == optValue, nil
}

// walkContext pre-seeds context entries for a <context> block's
// boolean/list/enum/text children from their declared defaults,
// without driving Hooks.VisitInput — see script.ContextBlock's doc
// comment for the Open-Question decision this resolves.
func (w *Walker) walkContext(ctx *context.Context, cb *script.ContextBlock) error {
	for _, n := range cb.Children {
		in, ok := n.(*script.Input)
		if !ok {
			continue
		}
		ok2, err := w.guardPasses(ctx, in)
		if err != nil {
			return err
		}
		if !ok2 {
			continue
		}
		v, err := defaultValue(in, ctx)
		if err != nil {
			return err
		}
		path := ctx.Path(in.Name)
		ctx.Put(path, v, context.SourceDefault)
		ctx.RegisterAlias(in.Name, path)
		ctx.Push(in.Name, in.Kind == script.KindList || in.Kind == script.KindEnum)
		err = w.walkChildren(ctx, in.Children)
		ctx.Pop()
		if err != nil {
			return err
		}
		for _, opt := range in.Options {
			if err := w.walkOption(ctx, in, opt, path); err != nil {
				return err
			}
		}
	}
	return nil
}

// defaultValue evaluates in.Default against ctx's snapshot, or returns
// an Empty value when no default was declared.
func defaultValue(in *script.Input, ctx *context.Context) (value.Value, error) {
	if in.Default == nil {
		return value.Empty("no default declared"), nil
	}
	v, err := exprparser.Evaluate(in.Default, ctx.Snapshot())
	if err != nil {
		pos := in.Position()
		return value.Value{}, diag.New(diag.KindUnsetVariable, err.Error(), pos.Script, pos.Line, in.Name)
	}
	return v, nil
}

func (w *Walker) walkPreset(ctx *context.Context, p *script.Preset) error {
	var v value.Value
	if p.Value.IsLiteral {
		v = value.OfString(p.Value.Literal)
	} else {
		ev, err := exprparser.Evaluate(p.Value.Expr, ctx.Snapshot())
		if err != nil {
			pos := p.Position()
			return diag.New(diag.KindResolutionError, err.Error(), pos.Script, pos.Line, p.Path)
		}
		v = ev
	}
	ctx.Put(p.Path, v, context.SourcePreset)
	return nil
}

// walkInvoke loads and expands the script referenced by inv, detecting
// cycles through the Session's active-chain guard (spec §4.3).
func (w *Walker) walkInvoke(ctx *context.Context, inv *script.Invoke) error {
	if inv.Kind == script.InvokeExec {
		// Process execution is an external-collaborator concern (spec
		// §1 "out of scope"); the CORE walk records nothing further.
		return nil
	}

	target := inv.Src
	if target == "" {
		target = inv.URL
	}
	pos := inv.Position()

	if inv.Kind == script.InvokeDir {
		return w.walkInvokeDir(ctx, inv, target)
	}

	resolved := archive.Join(ctx.Cwd(), target)
	sc, err := w.loadCached(resolved, pos.Script, pos.Line)
	if err != nil {
		return err
	}
	if err := w.Session.EnterInvoke(resolved); err != nil {
		return diag.New(diag.KindScriptReferenceError, err.Error(), pos.Script, pos.Line, resolved)
	}
	defer w.Session.LeaveInvoke(resolved)

	ctx.PushCwd(parentDir(resolved))
	defer ctx.PopCwd()

	children := sc.Children
	if inv.Method != "" {
		m := findMethod(sc, inv.Method)
		if m == nil {
			return diag.New(diag.KindScriptReferenceError, fmt.Sprintf("method %q not found in %s", inv.Method, resolved), pos.Script, pos.Line, resolved)
		}
		children = m.Children
	}
	return w.walkChildren(ctx, children)
}

// walkInvokeDir expands every *.xml script directly under dir, in
// archive List() order, each through the same cycle-guarded load path
// as a single invoke.
func (w *Walker) walkInvokeDir(ctx *context.Context, inv *script.Invoke, dir string) error {
	resolvedDir := archive.Join(ctx.Cwd(), dir)
	entries, err := w.Archive.List()
	if err != nil {
		pos := inv.Position()
		return diag.New(diag.KindScriptReferenceError, err.Error(), pos.Script, pos.Line, resolvedDir)
	}
	prefix := resolvedDir + "/"
	for _, entry := range entries {
		if !strings.HasPrefix(entry, prefix) || !strings.HasSuffix(entry, ".xml") {
			continue
		}
		if strings.Contains(strings.TrimPrefix(entry, prefix), "/") {
			continue // only the immediate directory, not nested subdirectories
		}
		sub := &script.Invoke{Envelope: inv.Envelope, Kind: script.InvokeScript, Src: entry}
		if err := w.walkInvoke(ctx, sub); err != nil {
			return err
		}
	}
	return nil
}

func (w *Walker) loadCached(resolved, callerScript string, callerLine int) (*script.Script, error) {
	if sc, ok := w.Session.CacheGet(resolved); ok {
		return sc, nil
	}
	if !w.Archive.Exists(resolved) {
		return nil, diag.New(diag.KindScriptReferenceError, fmt.Sprintf("invoke target %q not found", resolved), callerScript, callerLine, resolved)
	}
	r, err := w.Archive.OpenRead(resolved)
	if err != nil {
		return nil, diag.New(diag.KindScriptReferenceError, err.Error(), callerScript, callerLine, resolved)
	}
	defer r.Close()
	sc, err := xmlload.Load(r, resolved)
	if err != nil {
		return nil, err
	}
	w.Session.CachePut(resolved, sc)
	return sc, nil
}

func findMethod(sc *script.Script, name string) *script.Method {
	var found *script.Method
	var walk func(children []script.Node)
	walk = func(children []script.Node) {
		for _, n := range children {
			if found != nil {
				return
			}
			if m, ok := n.(*script.Method); ok && m.Name == name {
				found = m
				return
			}
		}
	}
	walk(sc.Children)
	return found
}

func parentDir(archivePath string) string {
	idx := strings.LastIndex(archivePath, "/")
	if idx < 0 {
		return ""
	}
	return archivePath[:idx]
}
