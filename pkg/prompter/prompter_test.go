package prompter

import (
	"bytes"
	"strings"
	"testing"
)

func TestCLIPromptReturnsDefaultOnEmptyLine(t *testing.T) {
	var out bytes.Buffer
	c := &CLI{In: strings.NewReader("\n"), Out: &out}
	ans, err := c.Prompt(Question{Kind: KindText, Label: "Project name", Default: "demo"})
	if err != nil {
		t.Fatalf("Prompt: %v", err)
	}
	if ans != "demo" {
		t.Fatalf("ans = %q, want demo", ans)
	}
	if !strings.Contains(out.String(), "Project name") {
		t.Fatalf("expected the label to be printed, got %q", out.String())
	}
}

func TestCLIPromptReturnsTypedLine(t *testing.T) {
	c := &CLI{In: strings.NewReader("kotlin\n"), Out: &bytes.Buffer{}}
	ans, err := c.Prompt(Question{Kind: KindEnum, Label: "Language", Options: []string{"kotlin", "java"}})
	if err != nil {
		t.Fatalf("Prompt: %v", err)
	}
	if ans != "kotlin" {
		t.Fatalf("ans = %q", ans)
	}
}

func TestCLIPromptCancelledOnQuit(t *testing.T) {
	c := &CLI{In: strings.NewReader("q\n"), Out: &bytes.Buffer{}}
	_, err := c.Prompt(Question{Kind: KindText, Label: "Name"})
	if _, ok := err.(*CancelledError); !ok {
		t.Fatalf("expected a CancelledError, got %v", err)
	}
}
