package orgtree

import (
	"errors"
	"testing"

	"github.com/BishopFox/orgtree/aws/sdk"
)

func TestValidateDetectsInconsistencies(t *testing.T) {
	var tests = []struct {
		name   string
		mutate func(inv *Inventory)
	}{
		{"duplicate account", func(inv *Inventory) {
			inv.Accounts = append(inv.Accounts, inv.Accounts[1])
		}},
		{"wrong parent", func(inv *Inventory) {
			inv.Accounts[2].Parent = "Dev"
		}},
		{"wrong path", func(inv *Inventory) {
			inv.Accounts[2].Path = "/Root/Prod"
		}},
		{"missing from flat list", func(inv *Inventory) {
			inv.Accounts = inv.Accounts[:len(inv.Accounts)-1]
		}},
		{"missing from tree", func(inv *Inventory) {
			inv.Root.Children[1].Accounts = []Account{}
		}},
		{"member of two OUs", func(inv *Inventory) {
			inv.Root.Children[2].Accounts = append(inv.Root.Children[2].Accounts, inv.Root.Children[1].Accounts...)
		}},
		{"root account missing from tree", func(inv *Inventory) {
			inv.Root.Accounts = []Account{}
		}},
		{"root account also in an OU", func(inv *Inventory) {
			inv.Root.Children[2].Accounts = append(inv.Root.Children[2].Accounts, inv.Root.Accounts...)
		}},
		{"unvisited root", func(inv *Inventory) {
			inv.Root.Accounts = nil
		}},
		{"unvisited OU", func(inv *Inventory) {
			inv.Root.Children[2].Children = nil
		}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			inv := buildInventory(t, sdk.NewMockedOrgClient(), 1)
			if err := inv.Validate(); err != nil {
				t.Fatalf("fresh inventory should validate: %s", err)
			}
			test.mutate(inv)
			if err := inv.Validate(); !errors.Is(err, ErrInconsistent) {
				t.Fatalf("expected ErrInconsistent, got %v", err)
			}
		})
	}
}
