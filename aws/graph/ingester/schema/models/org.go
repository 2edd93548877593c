package models

import (
	"github.com/BishopFox/orgtree/aws/graph/ingester/schema"
)

type Root struct {
	Id             string
	Arn            string
	Name           string
	OrganizationID string
}

func (r *Root) MakeRelationships() []schema.Relationship {
	if r.OrganizationID == "" {
		return []schema.Relationship{}
	}
	return []schema.Relationship{{
		SourceNodeID:     r.OrganizationID,
		TargetNodeID:     r.Id,
		SourceLabel:      schema.Organization,
		TargetLabel:      schema.Root,
		RelationshipType: schema.Contains,
	}}
}

type OrganizationalUnit struct {
	Id       string
	Arn      string
	Name     string
	ParentId string
	Path     string
}

func (o *OrganizationalUnit) MakeRelationships() []schema.Relationship {
	parentLabel := containerLabel(o.ParentId)
	return []schema.Relationship{
		{
			SourceNodeID:     o.ParentId,
			TargetNodeID:     o.Id,
			SourceLabel:      parentLabel,
			TargetLabel:      schema.OrganizationalUnit,
			RelationshipType: schema.Contains,
		},
		{
			SourceNodeID:     o.Id,
			TargetNodeID:     o.ParentId,
			SourceLabel:      schema.OrganizationalUnit,
			TargetLabel:      parentLabel,
			RelationshipType: schema.ChildOf,
		},
	}
}
