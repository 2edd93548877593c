package console

import (
	"strings"
	"testing"
	"time"

	"github.com/BishopFox/orgtree/internal/aws/orgtree"
)

func TestStatusLine(t *testing.T) {
	progress := &orgtree.Progress{}
	progress.OUs.Add(3)
	progress.Accounts.Add(7)
	line := statusLine("org-tree", progress)
	if !strings.Contains(line, "3 OUs and 7 accounts walked") {
		t.Fatalf("unexpected status line %q", line)
	}
}

func TestSpinUntilStops(t *testing.T) {
	done := make(chan struct{})
	finished := make(chan struct{})
	go SpinUntil("org-tree", &orgtree.Progress{}, time.Millisecond, done, finished)

	time.Sleep(5 * time.Millisecond)
	close(done)
	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("spinner did not stop")
	}
}
