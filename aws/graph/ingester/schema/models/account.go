package models

import "github.com/BishopFox/orgtree/aws/graph/ingester/schema"

type Account struct {
	Id              string
	Arn             string
	Email           string
	Name            string
	Status          string
	JoinedMethod    string
	JoinedTimestamp string
	ParentId        string
	Parent          string
	Path            string
	IsOrgMgmt       bool
	OrganizationID  string
}

func (a *Account) MakeRelationships() []schema.Relationship {
	var relationships []schema.Relationship

	if a.ParentId != "" {
		parentLabel := containerLabel(a.ParentId)
		// the OU (or root) holding the account
		relationships = append(relationships, schema.Relationship{
			SourceNodeID:     a.ParentId,
			TargetNodeID:     a.Id,
			SourceLabel:      parentLabel,
			TargetLabel:      schema.Account,
			RelationshipType: schema.Contains,
		})
		relationships = append(relationships, schema.Relationship{
			SourceNodeID:     a.Id,
			TargetNodeID:     a.ParentId,
			SourceLabel:      schema.Account,
			TargetLabel:      parentLabel,
			RelationshipType: schema.MemberOf,
		})
	}

	if a.IsOrgMgmt && a.OrganizationID != "" {
		relationships = append(relationships, schema.Relationship{
			SourceNodeID:     a.Id,
			TargetNodeID:     a.OrganizationID,
			SourceLabel:      schema.Account,
			TargetLabel:      schema.Organization,
			RelationshipType: schema.Manages,
		})
	}

	return relationships
}
