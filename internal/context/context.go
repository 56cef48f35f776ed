// Package context implements the Walker's path-scoped key->Value store
// (spec §3/§4.4): a segment stack forming dotted paths, a parallel CWD
// stack for invoke-relative path resolution, and isolated vs.
// non-isolated scoping.
//
// Grounded on github.com/funvibe/funxy/internal/symbols: a chain of
// enclosed scopes where Find walks from the innermost scope outward
// (symbol_table_operations.go's NewEnclosedSymbolTable/Outer/Find). We
// flatten that chain into a single dotted-path map instead of a linked
// list of SymbolTables, since spec §4.4 specifies "a flat path -> Value
// map", but keep the same inner-to-outer resolution order.
package context

import (
	"strings"

	"github.com/funvibe/archctl/internal/value"
)

// Source records where a Context entry came from, for diagnostics.
type Source int

const (
	SourceDefault Source = iota
	SourcePreset
	SourceExplicit
)

type entry struct {
	value  value.Value
	source Source
}

type frame struct {
	segment string
	isolate bool
}

// Context is a single build's path-scoped store. Not safe for
// concurrent use (spec §5: "A Context is owned by a single walk").
type Context struct {
	frames  []frame
	values  map[string]entry
	cwd     []string
	aliases map[string]string // input Name -> full dotted path, for alias lookups (spec §4.6)
}

// New returns an empty Context rooted at baseCwd.
func New(baseCwd string) *Context {
	return &Context{
		values:  make(map[string]entry),
		cwd:     []string{baseCwd},
		aliases: make(map[string]string),
	}
}

// Push opens a new scope named segment. When isolate is true, writes
// made inside this scope are not mirrored to any ancestor scope (spec
// §4.4 "An isolated scope does not propagate put to outer prefixes").
func (c *Context) Push(segment string, isolate bool) {
	c.frames = append(c.frames, frame{segment: segment, isolate: isolate})
}

// Pop closes the most recently opened scope.
func (c *Context) Pop() {
	if len(c.frames) == 0 {
		return
	}
	c.frames = c.frames[:len(c.frames)-1]
}

// PushCwd records dir as the active invoke-directory, used to resolve
// relative src/source attributes (spec §4.4/§4.3).
func (c *Context) PushCwd(dir string) { c.cwd = append(c.cwd, dir) }

// PopCwd restores the previous invoke-directory.
func (c *Context) PopCwd() {
	if len(c.cwd) > 1 {
		c.cwd = c.cwd[:len(c.cwd)-1]
	}
}

// Cwd returns the currently active invoke-directory.
func (c *Context) Cwd() string { return c.cwd[len(c.cwd)-1] }

func (c *Context) segments() []string {
	segs := make([]string, len(c.frames))
	for i, f := range c.frames {
		segs[i] = f.segment
	}
	return segs
}

// Path returns the current dotted path, optionally appending a leaf
// name (spec §4.4 "path() joins the current segment stack with '.'").
func (c *Context) Path(leaf ...string) string {
	segs := c.segments()
	if len(leaf) > 0 && leaf[0] != "" {
		segs = append(segs, leaf[0])
	}
	return strings.Join(segs, ".")
}

// RegisterAlias records name as an alias for path, so later lookups by
// bare input name succeed (spec §4.6 "also written to the Context
// under the input's full path and also under any name alias").
func (c *Context) RegisterAlias(name, path string) {
	c.aliases[name] = path
}

// Put writes value at path, recording its source. If the current scope
// is not isolated, the write is also mirrored at every enclosing
// non-isolated ancestor's equivalent path, up to (but not crossing) the
// first isolated ancestor — spec §4.4's "reflect child inputs into
// parent group paths".
func (c *Context) Put(path string, v value.Value, src Source) {
	c.values[path] = entry{value: v, source: src}
	c.mirrorUp(path, v, src)
}

// mirrorUp propagates a write made at the current scope's path upward
// through non-isolated ancestor frames.
func (c *Context) mirrorUp(path string, v value.Value, src Source) {
	segs := c.segments()
	full := strings.Join(segs, ".")
	suffix := path
	if full != "" && strings.HasPrefix(path, full) {
		suffix = strings.TrimPrefix(path, full)
		suffix = strings.TrimPrefix(suffix, ".")
	} else if full == path {
		suffix = ""
	} else {
		// path wasn't rooted at the current scope (e.g. a global/alias
		// write); nothing to mirror.
		return
	}
	for i := len(c.frames) - 1; i >= 0; i-- {
		if c.frames[i].isolate {
			break
		}
		parentSegs := segs[:i]
		var parentPath string
		if suffix == "" {
			parentPath = strings.Join(parentSegs, ".")
		} else if len(parentSegs) == 0 {
			parentPath = suffix
		} else {
			parentPath = strings.Join(parentSegs, ".") + "." + suffix
		}
		if parentPath == "" || parentPath == path {
			continue
		}
		if _, exists := c.values[parentPath]; !exists {
			c.values[parentPath] = entry{value: v, source: src}
		}
	}
}

// Get performs the inner-to-outer lookup described in spec §4.4: an
// exact match on path is tried first; failing that, path is resolved
// relative to each enclosing scope in turn (innermost first), and
// finally as a registered alias.
func (c *Context) Get(path string) (value.Value, bool) {
	if e, ok := c.values[path]; ok {
		return e.value, true
	}
	segs := c.segments()
	for i := len(segs); i > 0; i-- {
		candidate := strings.Join(segs[:i], ".") + "." + path
		if e, ok := c.values[candidate]; ok {
			return e.value, true
		}
	}
	if full, ok := c.aliases[path]; ok {
		if e, ok := c.values[full]; ok {
			return e.value, true
		}
	}
	return value.Value{}, false
}

// Source reports where the value at path came from, if present.
func (c *Context) Source(path string) (Source, bool) {
	if e, ok := c.values[path]; ok {
		return e.source, true
	}
	return 0, false
}

// Snapshot returns a flat copy of every resolved path -> raw string,
// for feeding into the expression evaluator's vars map (spec §4.2
// "evaluate(Map<String,String> vars)").
func (c *Context) Snapshot() map[string]string {
	out := make(map[string]string, len(c.values))
	for k, e := range c.values {
		if s, err := e.value.Get(); err == nil {
			out[k] = s
		}
	}
	return out
}
