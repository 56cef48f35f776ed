package context

import (
	"testing"

	"github.com/funvibe/archctl/internal/value"
)

func TestPathJoinsSegments(t *testing.T) {
	c := New("/root")
	c.Push("a", false)
	c.Push("b", false)
	if got, want := c.Path(), "a.b"; got != want {
		t.Fatalf("Path() = %q, want %q", got, want)
	}
	if got, want := c.Path("c"), "a.b.c"; got != want {
		t.Fatalf("Path(c) = %q, want %q", got, want)
	}
}

func TestIsolatedScopeDoesNotMirrorUp(t *testing.T) {
	c := New("/root")
	c.Push("group", false)
	c.Push("child", true)
	c.Put(c.Path("x"), value.OfString("v"), SourceExplicit)
	c.Pop()
	if _, ok := c.Get("group.x"); ok {
		t.Fatalf("isolated scope write leaked into parent group path")
	}
}

func TestNonIsolatedScopeMirrorsUp(t *testing.T) {
	c := New("/root")
	c.Push("group", false)
	c.Push("child", false)
	c.Put(c.Path("x"), value.OfString("v"), SourceExplicit)
	c.Pop()
	v, ok := c.Get("group.x")
	if !ok {
		t.Fatalf("expected non-isolated write to mirror into parent group path")
	}
	if s, _ := v.Get(); s != "v" {
		t.Fatalf("mirrored value = %q, want %q", s, "v")
	}
}

func TestCwdStack(t *testing.T) {
	c := New("/root")
	if c.Cwd() != "/root" {
		t.Fatalf("initial cwd = %q", c.Cwd())
	}
	c.PushCwd("/root/sub")
	if c.Cwd() != "/root/sub" {
		t.Fatalf("cwd after push = %q", c.Cwd())
	}
	c.PopCwd()
	if c.Cwd() != "/root" {
		t.Fatalf("cwd after pop = %q", c.Cwd())
	}
}

func TestAliasLookup(t *testing.T) {
	c := New("/root")
	c.Put("a.b.name", value.OfString("x"), SourceExplicit)
	c.RegisterAlias("name", "a.b.name")
	v, ok := c.Get("name")
	if !ok {
		t.Fatalf("expected alias lookup to succeed")
	}
	if s, _ := v.Get(); s != "x" {
		t.Fatalf("alias resolved to %q, want %q", s, "x")
	}
}
