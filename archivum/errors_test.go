package archivum

import "testing"

func TestArchivumErrorExitCode(t *testing.T) {
	if code := usageErr("bad flag").ExitCode(); code != ExitUsage {
		t.Errorf("usage error exit code = %d, want %d", code, ExitUsage)
	}
	if code := wrapIo("x", errTest{}).ExitCode(); code != ExitFailure {
		t.Errorf("io error exit code = %d, want %d", code, ExitFailure)
	}
	if code := tamperedErr("index.arc.json").ExitCode(); code != ExitFailure {
		t.Errorf("tampered error exit code = %d, want %d", code, ExitFailure)
	}
}

func TestArchivumErrorMessageIncludesPath(t *testing.T) {
	err := pathTraversalErr("../escape")
	msg := err.Error()
	if msg == "" {
		t.Fatal("expected a non-empty error message")
	}
	if err.Path != "../escape" {
		t.Errorf("Path = %q, want ../escape", err.Path)
	}
}

func TestArchivumErrorUnwrap(t *testing.T) {
	cause := errTest{}
	err := wrapIo("a.txt", cause)
	if err.Unwrap() != cause {
		t.Error("Unwrap did not return the original cause")
	}
}

type errTest struct{}

func (errTest) Error() string { return "boom" }
