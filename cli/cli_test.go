package cli

import (
	"strings"
	"testing"
)

func TestRun_ScriptedSession(t *testing.T) {
	s := newTestSession(t)

	script := strings.Join([]string{
		"# a comment, skipped",
		"mark chair1",
		"tick 5",
		"status chair1",
		"/quit",
	}, "\n")

	var out strings.Builder
	c := New(s)
	c.In = strings.NewReader(script)
	c.Out = &out

	c.Run()

	got := out.String()
	if !strings.Contains(got, "chair1 marked for improvement.") {
		t.Errorf("mark output missing:\n%s", got)
	}
	if !strings.Contains(got, "quality good") {
		t.Errorf("improvement result missing:\n%s", got)
	}
	if !strings.Contains(got, "[Goodbye.]") {
		t.Errorf("quit line missing:\n%s", got)
	}
	if strings.Contains(got, "a comment") {
		t.Errorf("comment line leaked into output:\n%s", got)
	}
}

func TestRun_EndOfInputEndsLoop(t *testing.T) {
	s := newTestSession(t)
	var out strings.Builder
	c := New(s)
	c.In = strings.NewReader("targets\n")
	c.Out = &out

	c.Run() // returns on EOF without /quit

	if !strings.Contains(out.String(), "Nothing is marked") {
		t.Errorf("targets output missing:\n%s", out.String())
	}
}
