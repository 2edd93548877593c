package models

import (
	"testing"

	"github.com/BishopFox/orgtree/aws/graph/ingester/schema"
)

func TestOrganizationalUnitRelationships(t *testing.T) {
	var tests = []struct {
		parentID    string
		parentLabel schema.NodeLabel
	}{
		{"r-ab12", schema.Root},
		{"ou-ab12-eng00001", schema.OrganizationalUnit},
	}
	for _, test := range tests {
		ou := OrganizationalUnit{Id: "ou-ab12-prd00001", ParentId: test.parentID}
		relationships := ou.MakeRelationships()
		if len(relationships) != 2 {
			t.Fatalf("expected 2 relationships, got %d", len(relationships))
		}
		contains, childOf := relationships[0], relationships[1]
		if contains.RelationshipType != schema.Contains || contains.SourceLabel != test.parentLabel || contains.SourceNodeID != test.parentID || contains.TargetNodeID != ou.Id {
			t.Errorf("unexpected Contains relationship %+v", contains)
		}
		if childOf.RelationshipType != schema.ChildOf || childOf.TargetLabel != test.parentLabel || childOf.SourceNodeID != ou.Id {
			t.Errorf("unexpected ChildOf relationship %+v", childOf)
		}
	}
}

func TestAccountRelationships(t *testing.T) {
	var tests = []struct {
		name     string
		account  Account
		expected []schema.RelationshipType
	}{
		{"member account", Account{Id: "222222222222", ParentId: "ou-ab12-prd00001", OrganizationID: "o-exampleorgid"}, []schema.RelationshipType{schema.Contains, schema.MemberOf}},
		{"management account", Account{Id: "111111111111", ParentId: "r-ab12", IsOrgMgmt: true, OrganizationID: "o-exampleorgid"}, []schema.RelationshipType{schema.Contains, schema.MemberOf, schema.Manages}},
		{"management without organization", Account{Id: "111111111111", ParentId: "r-ab12", IsOrgMgmt: true}, []schema.RelationshipType{schema.Contains, schema.MemberOf}},
		{"detached", Account{Id: "999999999999"}, nil},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			relationships := test.account.MakeRelationships()
			if len(relationships) != len(test.expected) {
				t.Fatalf("expected %d relationships, got %d", len(test.expected), len(relationships))
			}
			for i, r := range relationships {
				if r.RelationshipType != test.expected[i] {
					t.Errorf("relationship %d: got %s, expected %s", i, r.RelationshipType, test.expected[i])
				}
			}
		})
	}
}

func TestRootRelationships(t *testing.T) {
	if got := (&Root{Id: "r-ab12"}).MakeRelationships(); len(got) != 0 {
		t.Fatalf("a root without an organization has no relationships, got %v", got)
	}
	got := (&Root{Id: "r-ab12", OrganizationID: "o-exampleorgid"}).MakeRelationships()
	if len(got) != 1 || got[0].SourceLabel != schema.Organization || got[0].TargetNodeID != "r-ab12" {
		t.Fatalf("unexpected relationships %+v", got)
	}
}
