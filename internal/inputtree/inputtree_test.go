package inputtree

import (
	"strings"
	"testing"

	"github.com/funvibe/archctl/internal/xmlload"
)

func build(t *testing.T, src string) *Node {
	t.Helper()
	sc, err := xmlload.Load(strings.NewReader(src), "a.xml")
	if err != nil {
		t.Fatalf("xmlload.Load: %v", err)
	}
	return Build(sc)
}

func TestBuildCollectsReachableInputsIgnoringGuards(t *testing.T) {
	src := `<archetype-script>
  <input name="lang">
    <enum>
      <option value="kotlin"/>
      <option value="java"/>
      <option value="scala"/>
    </enum>
  </input>
  <input name="useDocker" if="false">
    <boolean/>
  </input>
</archetype-script>`
	root := build(t, src)
	if len(root.Children) != 2 {
		t.Fatalf("expected 2 reachable inputs (guard truth ignored), got %d", len(root.Children))
	}
	if root.Children[0].Kind != KindEnum || len(valueChildren(root.Children[0])) != 3 {
		t.Fatalf("unexpected enum node: %+v", root.Children[0])
	}
	if root.Children[1].Kind != KindBoolean {
		t.Fatalf("unexpected boolean node: %+v", root.Children[1])
	}
}

func TestPrunePresetCollapsesBooleanToSingleChild(t *testing.T) {
	src := `<archetype-script>
  <preset path="useDocker" value="true"/>
  <input name="useDocker">
    <boolean/>
  </input>
</archetype-script>`
	root := Prune(build(t, src))
	var boolNode *Node
	for _, c := range root.Children {
		if c.Kind == KindBoolean {
			boolNode = c
		}
	}
	if boolNode == nil {
		t.Fatal("expected the boolean node to survive pruning")
	}
	vals := valueChildren(boolNode)
	if len(vals) != 1 || vals[0].Str != "yes" {
		t.Fatalf("expected only the 'yes' child to survive, got %+v", vals)
	}
}

func TestPruneRemovesTextNodeFixedByPreset(t *testing.T) {
	src := `<archetype-script>
  <preset path="author" value="anon"/>
  <input name="author">
    <text/>
  </input>
</archetype-script>`
	root := Prune(build(t, src))
	for _, c := range root.Children {
		if c.Kind == KindText {
			t.Fatalf("expected the preset-fixed text node to be removed, found %+v", c)
		}
	}
}

func TestPermutationStateEnumeratesFlatCombinations(t *testing.T) {
	src := `<archetype-script>
  <input name="a"><boolean/></input>
  <input name="b"><boolean/></input>
  <input name="lang">
    <enum>
      <option value="kotlin"/>
      <option value="java"/>
      <option value="scala"/>
    </enum>
  </input>
</archetype-script>`
	ps := NewPermutationState(build(t, src))
	count := 0
	for !ps.Completed() {
		count++
		ps.Next()
	}
	if count != 12 {
		t.Fatalf("expected 2*2*3=12 permutations, got %d", count)
	}
}
