package cmd

import (
	"os"
	"strings"
	"testing"
)

func TestExecute_Version(t *testing.T) {
	defer setArgs("mnemos", "version")()
	out, err := captureStdout(func() {
		if e := Execute(); e != nil {
			t.Fatalf("Execute(version): %v", e)
		}
	})
	if err != nil {
		t.Fatal(err)
	}
	if out == "" {
		t.Error("version should print to stdout")
	}
	if !strings.Contains(out, "mnemos") {
		t.Errorf("version output should contain 'mnemos': %q", out)
	}
}

func TestExecute_Stats(t *testing.T) {
	tmpDir := t.TempDir()
	orig := os.Getenv("MNEMOS_DATA_DIR")
	os.Setenv("MNEMOS_DATA_DIR", tmpDir)
	defer func() {
		os.Setenv("MNEMOS_DATA_DIR", orig)
	}()

	defer setArgs("mnemos", "stats")()
	out, err := captureStdout(func() {
		if e := Execute(); e != nil {
			t.Fatalf("Execute(stats): %v", e)
		}
	})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "mnemos database stats") {
		t.Errorf("stats output: %q", out)
	}
}
