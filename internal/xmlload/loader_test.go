package xmlload

import (
	"strings"
	"testing"

	"github.com/funvibe/archctl/internal/script"
)

func TestLoadBasicScript(t *testing.T) {
	src := `<archetype-script>
  <input name="lang" label="Language">
    <enum>
      <option value="kotlin"/>
      <option value="java"/>
    </enum>
  </input>
  <preset path="db" value="h2"/>
  <output if="${lang} == 'kotlin'">
    <transformation id="rename" target="path">
      <replace regex="\.tmpl$" replacement=""/>
    </transformation>
    <file source="README.md" target="README.md"/>
    <files directory="src" transformations="rename">
      <includes><include>**/*.kt</include></includes>
    </files>
    <template engine="simple" source="pom.xml.tmpl" target="pom.xml">
      <model>
        <value key="name" inline="demo"/>
      </model>
    </template>
  </output>
</archetype-script>`

	sc, err := Load(strings.NewReader(src), "archetype.xml")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(sc.Children) != 3 {
		t.Fatalf("expected 3 top-level children, got %d", len(sc.Children))
	}

	in, ok := sc.Children[0].(*script.Input)
	if !ok {
		t.Fatalf("child 0 is %T, want *script.Input", sc.Children[0])
	}
	if in.Name != "lang" || in.Kind != script.KindEnum || len(in.Options) != 2 {
		t.Fatalf("unexpected input: %+v", in)
	}

	preset, ok := sc.Children[1].(*script.Preset)
	if !ok {
		t.Fatalf("child 1 is %T, want *script.Preset", sc.Children[1])
	}
	if preset.Path != "db" || preset.Value.Literal != "h2" || !preset.Value.IsLiteral {
		t.Fatalf("unexpected preset: %+v", preset)
	}

	out, ok := sc.Children[2].(*script.Output)
	if !ok {
		t.Fatalf("child 2 is %T, want *script.Output", sc.Children[2])
	}
	if out.GuardExpr() == nil {
		t.Fatal("expected output's guard expression to be parsed")
	}
	if len(out.Children) != 4 {
		t.Fatalf("expected 4 output children, got %d", len(out.Children))
	}
	tpl, ok := out.Children[3].(*script.Template)
	if !ok {
		t.Fatalf("output child 3 is %T, want *script.Template", out.Children[3])
	}
	if tpl.Model == nil || len(tpl.Model.Children) != 1 {
		t.Fatalf("expected template model with one value child, got %+v", tpl.Model)
	}
}

func TestLoadPresetExpressionValue(t *testing.T) {
	src := `<archetype-script>
  <preset path="db" value="${driver}"/>
</archetype-script>`
	sc, err := Load(strings.NewReader(src), "a.xml")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	preset := sc.Children[0].(*script.Preset)
	if preset.Value.IsLiteral || preset.Value.Expr == nil {
		t.Fatalf("expected an expression-dynamic preset value, got %+v", preset.Value)
	}
}

func TestLoadRejectsUnknownChild(t *testing.T) {
	src := `<archetype-script>
  <bogus/>
</archetype-script>`
	if _, err := Load(strings.NewReader(src), "a.xml"); err == nil {
		t.Fatal("expected a LoadError for an unadmitted child")
	}
}

func TestLoadRejectsMissingRequiredAttribute(t *testing.T) {
	src := `<archetype-script>
  <input label="no name"/>
</archetype-script>`
	if _, err := Load(strings.NewReader(src), "a.xml"); err == nil {
		t.Fatal("expected a LoadError for a missing name attribute")
	}
}

func TestLoadRejectsNonRootElement(t *testing.T) {
	if _, err := Load(strings.NewReader(`<not-a-script/>`), "a.xml"); err == nil {
		t.Fatal("expected a LoadError for the wrong root element")
	}
}

func TestLoadContextPreSeedsInputKinds(t *testing.T) {
	src := `<archetype-script>
  <context>
    <boolean name="useDocker" default="true"/>
    <text name="author" default="anon"/>
  </context>
</archetype-script>`
	sc, err := Load(strings.NewReader(src), "a.xml")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	cb, ok := sc.Children[0].(*script.ContextBlock)
	if !ok {
		t.Fatalf("child 0 is %T, want *script.ContextBlock", sc.Children[0])
	}
	if len(cb.Children) != 2 {
		t.Fatalf("expected 2 context children, got %d", len(cb.Children))
	}
	b := cb.Children[0].(*script.Input)
	if b.Name != "useDocker" || b.Kind != script.KindBoolean || b.Default == nil {
		t.Fatalf("unexpected boolean input: %+v", b)
	}
}
