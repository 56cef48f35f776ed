// Package session confines the state spec §9 calls out as looking
// global — the script cache and the template engine registry — into a
// single Session value threaded explicitly through the Walker, rather
// than process-wide mutables (spec §9 "Global state" design note).
//
// Grounded on github.com/funvibe/funxy/internal/modules/loader.go's
// Loader: LoadedModules/ModulesByName caches plus a Processing map used
// as a cycle guard during loading.
package session

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/funvibe/archctl/internal/script"
)

// TemplateEngine renders a template source against a scope map,
// matching the §6 "Template engine registry" interface.
type TemplateEngine interface {
	Render(templateSource string, scope map[string]interface{}) (string, error)
}

// Session owns the state shared across one archetype build: the
// script cache, the invoke-cycle guard, and the template engine
// registry (spec §5 "one archetype evaluation owns one Context, one
// script cache ... and one output sink").
type Session struct {
	// ID correlates diagnostics produced by this build (see
	// internal/diag.Diagnostic.SessionID). Built with google/uuid, the
	// funxy teacher's own direct dependency.
	ID string

	cache      map[string]*script.Script // canonicalized path -> loaded Script
	processing map[string]bool           // canonicalized path -> on the active invoke chain
	engines    map[string]TemplateEngine
}

// New returns an empty Session with a fresh ID.
func New() *Session {
	return &Session{
		ID:         uuid.NewString(),
		cache:      make(map[string]*script.Script),
		processing: make(map[string]bool),
		engines:    make(map[string]TemplateEngine),
	}
}

// RegisterEngine adds engine under name to the template engine
// registry (spec §6).
func (s *Session) RegisterEngine(name string, engine TemplateEngine) {
	s.engines[name] = engine
}

// Engine looks up a registered template engine by name.
func (s *Session) Engine(name string) (TemplateEngine, bool) {
	e, ok := s.engines[name]
	return e, ok
}

// CacheGet returns the cached Script for canonicalPath, if any. The
// cache is write-once per key (spec §5 "Shared resource policy").
func (s *Session) CacheGet(canonicalPath string) (*script.Script, bool) {
	sc, ok := s.cache[canonicalPath]
	return sc, ok
}

// CachePut stores sc under canonicalPath. Calling it twice for the same
// key is a programmer error in this single-writer cache; the second
// write is ignored rather than silently corrupting an in-flight walk.
func (s *Session) CachePut(canonicalPath string, sc *script.Script) {
	if _, exists := s.cache[canonicalPath]; exists {
		return
	}
	s.cache[canonicalPath] = sc
}

// CycleError reports an invoke chain that revisits a script already on
// the active chain (spec §4.3 "detects cycles by a visited set of
// canonicalized paths on the active invoke chain").
type CycleError struct {
	Path string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("invoke cycle detected at %s", e.Path)
}

// EnterInvoke marks canonicalPath as active on the current invoke
// chain, returning an error if it is already active (a cycle).
func (s *Session) EnterInvoke(canonicalPath string) error {
	if s.processing[canonicalPath] {
		return &CycleError{Path: canonicalPath}
	}
	s.processing[canonicalPath] = true
	return nil
}

// LeaveInvoke clears canonicalPath from the active invoke chain. Call
// in a defer immediately after a successful EnterInvoke.
func (s *Session) LeaveInvoke(canonicalPath string) {
	delete(s.processing, canonicalPath)
}
