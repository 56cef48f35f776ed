package output

import (
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/funvibe/archctl/internal/context"
	"github.com/funvibe/archctl/internal/script"
	"github.com/funvibe/archctl/internal/session"
	"github.com/funvibe/archctl/internal/walker"
	"github.com/funvibe/archctl/internal/xmlload"
	"github.com/funvibe/archctl/pkg/templateengine"
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
func (m *memArchive) List() ([]string, error) {
	out := make([]string, 0, len(m.files))
	for p := range m.files {
		out = append(out, p)
	}
	return out, nil
}

type memSink struct{ written map[string]string }

func (s *memSink) WriteFile(path string, content []byte) error {
	if s.written == nil {
		s.written = map[string]string{}
	}
	s.written[path] = string(content)
	return nil
}

func run(t *testing.T, arch *memArchive, sink *memSink, src string) {
	t.Helper()
	sc, err := xmlload.Load(strings.NewReader(src), "a.xml")
	if err != nil {
		t.Fatalf("xmlload.Load: %v", err)
	}
	sess := session.New()
	templateengine.RegisterDefaults(sess)
	gen := New(sess, arch, sink)
	w := walker.New(sess, arch, gen)
	if err := w.Walk(context.New(""), sc); err != nil {
		t.Fatalf("Walk: %v", err)
	}
}

func TestGeneratorCopiesFileLiterally(t *testing.T) {
	src := `<archetype-script>
  <output>
    <file source="README.md.tmpl" target="README.md"/>
  </output>
</archetype-script>`
	arch := &memArchive{files: map[string]string{"README.md.tmpl": "hello"}}
	sink := &memSink{}
	run(t, arch, sink, src)
	if sink.written["README.md"] != "hello" {
		t.Fatalf("written files: %+v", sink.written)
	}
}

func TestGeneratorExpandsFilesWithGlobAndTransformation(t *testing.T) {
	src := `<archetype-script>
  <output>
    <transformation id="strip" target="path">
      <replace regex="\.tmpl$" replacement=""/>
    </transformation>
    <files transformations="strip">
      <directory>src</directory>
      <includes><include>**/*.tmpl</include></includes>
    </files>
  </output>
</archetype-script>`
	arch := &memArchive{files: map[string]string{
		"src/main.go.tmpl":  "package main",
		"src/other.txt":     "skip me",
		"unrelated/file.go": "nope",
	}}
	sink := &memSink{}
	run(t, arch, sink, src)
	want := map[string]string{"main.go": "package main"}
	if diff := cmp.Diff(want, sink.written); diff != "" {
		t.Fatalf("written files mismatch (-want +got):\n%s", diff)
	}
}

func TestGeneratorRendersTemplateWithMergedModel(t *testing.T) {
	src := `<archetype-script>
  <output>
    <template engine="simple" source="pom.xml.tmpl" target="pom.xml">
      <model>
        <value key="name" inline="demo"/>
      </model>
    </template>
  </output>
</archetype-script>`
	arch := &memArchive{files: map[string]string{"pom.xml.tmpl": "project={{.name}}"}}
	sink := &memSink{}
	run(t, arch, sink, src)
	if sink.written["pom.xml"] != "project=demo" {
		t.Fatalf("written files: %+v", sink.written)
	}
}

func TestMaterializeChildrenGroupsRepeatedKeyByOrder(t *testing.T) {
	g := New(session.New(), &memArchive{}, &memSink{})
	nodes := []script.ModelNode{
		&script.ModelValue{Key: "v", Order: 150, Inline: "second"},
		&script.ModelValue{Key: "v", Order: 50, Inline: "first"},
	}
	scope := g.materializeChildren(nodes)
	list, ok := scope["v"].([]interface{})
	if !ok || len(list) != 2 {
		t.Fatalf("expected a 2-element list for repeated key 'v', got %#v", scope["v"])
	}
	if list[0] != "first" || list[1] != "second" {
		t.Fatalf("expected order-50 first, got %#v", list)
	}
}

func TestMaterializeChildrenDropsEmptyLists(t *testing.T) {
	g := New(session.New(), &memArchive{}, &memSink{})
	nodes := []script.ModelNode{
		&script.ModelList{Key: "plugins"},
	}
	scope := g.materializeChildren(nodes)
	if _, ok := scope["plugins"]; ok {
		t.Fatalf("expected an empty list to be dropped from scope, got %#v", scope)
	}
}
