package orgtree

import (
	"fmt"

	"github.com/jedib0t/go-pretty/list"
)

// RenderTree draws the hierarchy as an indented list, OUs before the
// accounts they hold.
func RenderTree(inv *Inventory) string {
	l := list.NewWriter()
	l.SetStyle(list.StyleConnectedRounded)

	l.AppendItem(fmt.Sprintf("%s (%s)", inv.Root.Name, inv.Root.Id))
	l.Indent()
	for _, child := range inv.Root.Children {
		renderNode(l, child)
	}
	for _, a := range inv.Root.Accounts {
		l.AppendItem(accountLabel(a))
	}
	return l.Render()
}

func renderNode(l list.Writer, node OuNode) {
	l.AppendItem(fmt.Sprintf("%s (%s)", node.Name, node.Id))
	if len(node.Children) == 0 && len(node.Accounts) == 0 {
		return
	}
	l.Indent()
	for _, child := range node.Children {
		renderNode(l, child)
	}
	for _, a := range node.Accounts {
		l.AppendItem(accountLabel(a))
	}
	l.UnIndent()
}

func accountLabel(a Account) string {
	return fmt.Sprintf("%s [%s] %s", a.Id, a.Status, a.Name)
}
