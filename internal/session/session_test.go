package session

import (
	"testing"

	"github.com/funvibe/archctl/internal/script"
)

func TestCachePutIsWriteOnce(t *testing.T) {
	s := New()
	first := &script.Script{Path: "a.xml"}
	second := &script.Script{Path: "a.xml-second"}
	s.CachePut("a.xml", first)
	s.CachePut("a.xml", second)
	got, ok := s.CacheGet("a.xml")
	if !ok || got != first {
		t.Fatalf("expected the first CachePut to win, got %+v", got)
	}
}

func TestEnterInvokeDetectsCycle(t *testing.T) {
	s := New()
	if err := s.EnterInvoke("a.xml"); err != nil {
		t.Fatalf("unexpected error on first entry: %v", err)
	}
	if err := s.EnterInvoke("a.xml"); err == nil {
		t.Fatal("expected a CycleError on re-entry")
	}
	s.LeaveInvoke("a.xml")
	if err := s.EnterInvoke("a.xml"); err != nil {
		t.Fatalf("expected re-entry to succeed after LeaveInvoke: %v", err)
	}
}

func TestRegisterAndLookupEngine(t *testing.T) {
	s := New()
	if _, ok := s.Engine("simple"); ok {
		t.Fatal("expected no engine registered yet")
	}
	s.RegisterEngine("simple", fakeEngine{})
	if _, ok := s.Engine("simple"); !ok {
		t.Fatal("expected the registered engine to be found")
	}
}

type fakeEngine struct{}

func (fakeEngine) Render(src string, scope map[string]interface{}) (string, error) { return src, nil }

func TestNewAssignsDistinctIDs(t *testing.T) {
	a, b := New(), New()
	if a.ID == "" || a.ID == b.ID {
		t.Fatalf("expected distinct non-empty session IDs, got %q and %q", a.ID, b.ID)
	}
}
