package resolver

import (
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/funvibe/archctl/internal/context"
	"github.com/funvibe/archctl/internal/script"
	"github.com/funvibe/archctl/internal/session"
	"github.com/funvibe/archctl/internal/walker"
	"github.com/funvibe/archctl/internal/xmlload"
)

type memArchive struct{ files map[string]string }

func (m *memArchive) Exists(path string) bool { _, ok := m.files[path]; return ok }
func (m *memArchive) OpenRead(path string) (io.ReadCloser, error) {
	s, ok := m.files[path]
	if !ok {
		return nil, fmt.Errorf("not found: %s", path)
	}
	return io.NopCloser(strings.NewReader(s)), nil
}
func (m *memArchive) List() ([]string, error) { return nil, nil }

func load(t *testing.T, src string) *script.Script {
	t.Helper()
	sc, err := xmlload.Load(strings.NewReader(src), "a.xml")
	if err != nil {
		t.Fatalf("xmlload.Load: %v", err)
	}
	return sc
}

func TestResolverBatchModeBindsByPath(t *testing.T) {
	src := `<archetype-script>
  <input name="lang">
    <enum>
      <option value="kotlin"/>
      <option value="java"/>
    </enum>
  </input>
</archetype-script>`
	sc := load(t, src)
	r := &Resolver{Mode: ModeBatch, Batch: map[string]string{"lang": "java"}}
	w := walker.New(session.New(), &memArchive{}, r)
	ctx := context.New("")
	if err := w.Walk(ctx, sc); err != nil {
		t.Fatalf("Walk: %v", err)
	}
	v, ok := ctx.Get("lang")
	if !ok {
		t.Fatal("expected lang to be bound")
	}
	s, _ := v.AsString()
	if s != "java" {
		t.Fatalf("lang = %q, want java", s)
	}
}

func TestResolverBatchModeRejectsInvalidOption(t *testing.T) {
	src := `<archetype-script>
  <input name="lang">
    <enum>
      <option value="kotlin"/>
    </enum>
  </input>
</archetype-script>`
	sc := load(t, src)
	r := &Resolver{Mode: ModeBatch, Batch: map[string]string{"lang": "rust"}}
	w := walker.New(session.New(), &memArchive{}, r)
	if err := w.Walk(context.New(""), sc); err == nil {
		t.Fatal("expected a resolution error for an option not in the enum")
	}
}

func TestResolverRequiredInputMissingIsAnError(t *testing.T) {
	src := `<archetype-script>
  <input name="project">
    <text/>
  </input>
</archetype-script>`
	sc := load(t, src)
	r := &Resolver{Mode: ModeBatch, Batch: map[string]string{}}
	w := walker.New(session.New(), &memArchive{}, r)
	if err := w.Walk(context.New(""), sc); err == nil {
		t.Fatal("expected a resolution error for a required input with no answer and no default")
	}
}

func TestResolverOptionalInputMissingIsNotAnError(t *testing.T) {
	src := `<archetype-script>
  <input name="project" optional="true">
    <text/>
  </input>
</archetype-script>`
	sc := load(t, src)
	r := &Resolver{Mode: ModeBatch, Batch: map[string]string{}}
	w := walker.New(session.New(), &memArchive{}, r)
	if err := w.Walk(context.New(""), sc); err != nil {
		t.Fatalf("Walk: %v", err)
	}
}

func TestResolverListValidatesMinMax(t *testing.T) {
	src := `<archetype-script>
  <input name="plugins">
    <list min="1" max="2">
      <option value="a"/>
      <option value="b"/>
      <option value="c"/>
    </list>
  </input>
</archetype-script>`
	sc := load(t, src)
	r := &Resolver{Mode: ModeBatch, Batch: map[string]string{"plugins": "a,b,c"}}
	w := walker.New(session.New(), &memArchive{}, r)
	if err := w.Walk(context.New(""), sc); err == nil {
		t.Fatal("expected a max-size violation")
	}
}

func TestResolverExhaustiveModeUsesPermutationMap(t *testing.T) {
	src := `<archetype-script>
  <input name="useDocker">
    <boolean/>
  </input>
</archetype-script>`
	sc := load(t, src)
	r := &Resolver{Mode: ModeExhaustive, Permutation: map[string]string{"useDocker": "true"}}
	w := walker.New(session.New(), &memArchive{}, r)
	ctx := context.New("")
	if err := w.Walk(ctx, sc); err != nil {
		t.Fatalf("Walk: %v", err)
	}
	v, _ := ctx.Get("useDocker")
	b, _ := v.AsBool()
	if !b {
		t.Fatal("expected useDocker = true from the permutation map")
	}
}
