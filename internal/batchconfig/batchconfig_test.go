package batchconfig

import (
	"strings"
	"testing"
)

func TestLoadProperties(t *testing.T) {
	src := "# a comment\n! another\nproject.name=demo\nlang: kotlin\n\ndb.driver=h2\n"
	got, err := Load(strings.NewReader(src), ".properties")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := map[string]string{"project.name": "demo", "lang": "kotlin", "db.driver": "h2"}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("got[%q] = %q, want %q", k, got[k], v)
		}
	}
	if len(got) != len(want) {
		t.Errorf("got %d entries, want %d (%v)", len(got), len(want), got)
	}
}

func TestLoadPropertiesMissingEquals(t *testing.T) {
	if _, err := Load(strings.NewReader("not-a-kv-line"), ".properties"); err == nil {
		t.Fatal("expected an error for a line with no separator")
	}
}

func TestLoadYAMLNestedAndList(t *testing.T) {
	src := "project:\n  name: demo\nlangs:\n  - kotlin\n  - java\nflag: true\n"
	got, err := Load(strings.NewReader(src), ".yaml")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got["project.name"] != "demo" {
		t.Errorf("project.name = %q", got["project.name"])
	}
	if got["langs"] != "kotlin,java" {
		t.Errorf("langs = %q", got["langs"])
	}
	if got["flag"] != "true" {
		t.Errorf("flag = %q", got["flag"])
	}
}

func TestLoadYAMLEmptyDocument(t *testing.T) {
	got, err := Load(strings.NewReader(""), ".yml")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected an empty map, got %v", got)
	}
}
