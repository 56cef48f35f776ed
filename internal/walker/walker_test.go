package walker

import (
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/funvibe/archctl/internal/context"
	"github.com/funvibe/archctl/internal/script"
	"github.com/funvibe/archctl/internal/session"
	"github.com/funvibe/archctl/internal/xmlload"
)

// memArchive is a trivial in-memory archive.Archive for tests.
type memArchive struct {
	files map[string]string
}

func (m *memArchive) Exists(path string) bool { _, ok := m.files[path]; return ok }

func (m *memArchive) OpenRead(path string) (io.ReadCloser, error) {
	s, ok := m.files[path]
	if !ok {
		return nil, fmt.Errorf("memArchive: %s not found", path)
	}
	return io.NopCloser(strings.NewReader(s)), nil
}

func (m *memArchive) List() ([]string, error) {
	out := make([]string, 0, len(m.files))
	for p := range m.files {
		out = append(out, p)
	}
	return out, nil
}

// recordingHooks captures every Input/Output node the Walker reaches,
// binding each input to its declared default so guards downstream see
// a value (mirroring walkContext's own pre-seed behavior, simplified
// for test purposes).
type recordingHooks struct {
	inputs  []string
	outputs []string
}

func (h *recordingHooks) VisitInput(ctx *context.Context, in *script.Input) error {
	h.inputs = append(h.inputs, ctx.Path(in.Name))
	v, err := defaultValue(in, ctx)
	if err != nil {
		return err
	}
	path := ctx.Path(in.Name)
	ctx.Put(path, v, context.SourceDefault)
	ctx.RegisterAlias(in.Name, path)
	return nil
}

func (h *recordingHooks) VisitOutput(ctx *context.Context, out *script.Output) error {
	h.outputs = append(h.outputs, "output")
	return ErrSkipSubtree
}

func load(t *testing.T, src string) *script.Script {
	t.Helper()
	sc, err := xmlload.Load(strings.NewReader(src), "archetype.xml")
	if err != nil {
		t.Fatalf("xmlload.Load: %v", err)
	}
	return sc
}

func TestWalkVisitsGuardedOptionSubtreeOnlyWhenSelected(t *testing.T) {
	src := `<archetype-script>
  <input name="lang">
    <enum default="kotlin">
      <option value="kotlin">
        <output><file source="a" target="kotlin.txt"/></output>
      </option>
      <option value="java">
        <output><file source="a" target="java.txt"/></output>
      </option>
    </enum>
  </input>
</archetype-script>`
	sc := load(t, src)
	hooks := &recordingHooks{}
	w := New(session.New(), &memArchive{files: map[string]string{}}, hooks)
	ctx := context.New("")
	if err := w.Walk(ctx, sc); err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if len(hooks.outputs) != 1 {
		t.Fatalf("expected exactly one output to be visited (kotlin's), got %d", len(hooks.outputs))
	}
}

func TestWalkSkipsSubtreeOnFalseGuard(t *testing.T) {
	src := `<archetype-script>
  <step if="false">
    <input name="x"><boolean/><output/></input>
  </step>
</archetype-script>`
	sc := load(t, src)
	hooks := &recordingHooks{}
	w := New(session.New(), &memArchive{files: map[string]string{}}, hooks)
	if err := w.Walk(context.New(""), sc); err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if len(hooks.outputs) != 0 {
		t.Fatal("expected the guarded step's output to be skipped")
	}
}

func TestWalkPresetFixesContextValue(t *testing.T) {
	src := `<archetype-script>
  <preset path="db" value="h2"/>
</archetype-script>`
	sc := load(t, src)
	hooks := &recordingHooks{}
	w := New(session.New(), &memArchive{files: map[string]string{}}, hooks)
	ctx := context.New("")
	if err := w.Walk(ctx, sc); err != nil {
		t.Fatalf("Walk: %v", err)
	}
	v, ok := ctx.Get("db")
	if !ok {
		t.Fatal("expected db to be set by the preset")
	}
	s, _ := v.AsString()
	if s != "h2" {
		t.Fatalf("db = %q, want h2", s)
	}
}

func TestWalkInvokeExpandsReferencedScript(t *testing.T) {
	main := `<archetype-script>
  <invoke src="sub.xml"/>
</archetype-script>`
	sub := `<archetype-script>
  <output/>
</archetype-script>`
	arch := &memArchive{files: map[string]string{"sub.xml": sub}}
	sc := load(t, main)
	hooks := &recordingHooks{}
	w := New(session.New(), arch, hooks)
	if err := w.Walk(context.New(""), sc); err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if len(hooks.outputs) != 1 {
		t.Fatalf("expected the invoked script's output to be visited, got %d", len(hooks.outputs))
	}
}

func TestWalkInvokeDetectsCycle(t *testing.T) {
	a := `<archetype-script><invoke src="b.xml"/></archetype-script>`
	b := `<archetype-script><invoke src="a.xml"/></archetype-script>`
	arch := &memArchive{files: map[string]string{"a.xml": a, "b.xml": b}}
	sess := session.New()
	sess.CachePut("a.xml", load(t, a))
	sc, err := xmlload.Load(strings.NewReader(b), "b.xml")
	if err != nil {
		t.Fatal(err)
	}
	sess.CachePut("b.xml", sc)
	w := New(sess, arch, &recordingHooks{})
	err = w.Walk(context.New(""), load(t, a))
	if err == nil {
		t.Fatal("expected a cycle error")
	}
}
