package console

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/BishopFox/orgtree/internal"
	"github.com/BishopFox/orgtree/internal/aws/orgtree"
	"github.com/aws/smithy-go/ptr"
	"github.com/fatih/color"
)

const clearln = "\r\x1b[2K"

var cyan = color.New(color.FgCyan).SprintFunc()

func statusLine(callingModuleName string, progress *orgtree.Progress) string {
	return fmt.Sprintf("[%s] Status: %d OUs and %d accounts walked (for details check %s)",
		cyan(callingModuleName),
		progress.OUs.Load(),
		progress.Accounts.Load(),
		filepath.Join(ptr.ToString(internal.GetLogDirPath()), "cloudfox-error.log"))
}

// SpinUntil prints walk progress every interval until done is closed or
// receives a value. It signals completion by closing finished.
func SpinUntil(callingModuleName string, progress *orgtree.Progress, interval time.Duration, done <-chan struct{}, finished chan<- struct{}) {
	defer close(finished)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			fmt.Print(clearln + statusLine(callingModuleName, progress))
		case <-done:
			fmt.Println(clearln + statusLine(callingModuleName, progress))
			return
		}
	}
}
