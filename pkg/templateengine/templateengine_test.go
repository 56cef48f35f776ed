package templateengine

import (
	"testing"

	"github.com/funvibe/archctl/internal/session"
)

func TestSimpleRenderSubstitutesScope(t *testing.T) {
	out, err := Simple{}.Render("hello {{.name}}", map[string]interface{}{"name": "world"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if out != "hello world" {
		t.Fatalf("out = %q", out)
	}
}

func TestSimpleRenderMissingKeyIsZeroValue(t *testing.T) {
	out, err := Simple{}.Render("[{{.missing}}]", map[string]interface{}{})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if out != "[]" {
		t.Fatalf("out = %q, want an empty substitution for a missing key", out)
	}
}

func TestRegisterDefaultsRegistersSimpleEngine(t *testing.T) {
	sess := session.New()
	RegisterDefaults(sess)
	if _, ok := sess.Engine("simple"); !ok {
		t.Fatal("expected the simple engine to be registered")
	}
}
