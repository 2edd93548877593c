package orgtree

import (
	"fmt"
	"strings"
)

// Validate checks that the flat account list and the tree describe the same
// organization: no account is listed twice, each one is a member of exactly
// one OU (or the root) named by its Parent, and its Path leads from the root
// to that OU.
func (inv *Inventory) Validate() error {
	type owner struct {
		name string
		path string
	}
	owners := make(map[string][]owner)

	rootPath := "/" + RootName
	if inv.Root.Accounts == nil || inv.Root.Children == nil {
		return fmt.Errorf("root %s was not fully visited: %w", inv.Root.Id, ErrInconsistent)
	}
	for _, a := range inv.Root.Accounts {
		owners[a.Id] = append(owners[a.Id], owner{name: RootName, path: rootPath})
	}
	err := inv.Root.Walk(func(node *OuNode, path []string) error {
		if node.Accounts == nil || node.Children == nil {
			return fmt.Errorf("OU %s was not fully visited: %w", node.Id, ErrInconsistent)
		}
		ouPath := rootPath + "/" + strings.Join(path, "/")
		for _, a := range node.Accounts {
			owners[a.Id] = append(owners[a.Id], owner{name: node.Name, path: ouPath})
		}
		return nil
	})
	if err != nil {
		return err
	}

	seen := make(map[string]bool, len(inv.Accounts))
	for _, a := range inv.Accounts {
		if seen[a.Id] {
			return fmt.Errorf("account %s listed more than once: %w", a.Id, ErrInconsistent)
		}
		seen[a.Id] = true

		found := owners[a.Id]
		if len(found) != 1 {
			return fmt.Errorf("account %s is a member of %d OUs: %w", a.Id, len(found), ErrInconsistent)
		}
		if found[0].name != a.Parent {
			return fmt.Errorf("account %s has parent %q but sits in %q: %w", a.Id, a.Parent, found[0].name, ErrInconsistent)
		}
		if found[0].path != a.Path {
			return fmt.Errorf("account %s has path %q but sits at %q: %w", a.Id, a.Path, found[0].path, ErrInconsistent)
		}
	}

	for id := range owners {
		if !seen[id] {
			return fmt.Errorf("account %s is in the tree but not the account list: %w", id, ErrInconsistent)
		}
	}
	return nil
}

// AccountIDs returns the IDs of every account in the flat list.
func (inv *Inventory) AccountIDs() []string {
	ids := make([]string, 0, len(inv.Accounts))
	for _, a := range inv.Accounts {
		ids = append(ids, a.Id)
	}
	return ids
}

// OUCount returns the number of OUs below the root.
func (inv *Inventory) OUCount() int {
	count := 0
	inv.Root.Walk(func(*OuNode, []string) error {
		count++
		return nil
	})
	return count
}
