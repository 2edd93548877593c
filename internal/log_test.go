package internal

import (
	"io"
	"os"
	"strings"
	"testing"
)

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	stdout := os.Stdout
	os.Stdout = w
	fn()
	os.Stdout = stdout
	w.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	return string(out)
}

func TestLoggerConsoleLines(t *testing.T) {
	logger := NewLogger()
	var tests = []struct {
		name  string
		print func(text string, module string)
	}{
		{"info", logger.InfoM},
		{"success", logger.SuccessM},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			out := captureStdout(t, func() {
				test.print("5 OUs and 6 accounts found.", "org-tree")
			})
			if !strings.Contains(out, "org-tree") || !strings.Contains(out, "5 OUs and 6 accounts found.") {
				t.Fatalf("unexpected console line %q", out)
			}
			if !strings.HasSuffix(out, "\n") || strings.Count(out, "\n") != 1 {
				t.Fatalf("expected a single line, got %q", out)
			}
		})
	}
}
