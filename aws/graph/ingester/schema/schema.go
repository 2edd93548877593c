package schema

import (
	"slices"

	"github.com/goccy/go-json"
)

type RelationshipType string
type NodeLabel string

type Node interface {
	MakeRelationships() []Relationship
}

type Relationship struct {
	SourceNodeID     string                 `json:"sourceNodeId"`
	TargetNodeID     string                 `json:"targetNodeId"`
	SourceLabel      NodeLabel              `json:"sourceLabel"`
	TargetLabel      NodeLabel              `json:"targetLabel"`
	RelationshipType RelationshipType       `json:"relationshipType"`
	Properties       map[string]interface{} `json:"properties"`
	SourceProperty   string                 `json:"sourceProperty"`
	TargetProperty   string                 `json:"targetProperty"`
}

const (
	// Relationships
	ChildOf  RelationshipType = "ChildOf"
	Contains RelationshipType = "Contains"
	Manages  RelationshipType = "Manages"
	MemberOf RelationshipType = "MemberOf"
)

const (
	// Node labels
	Organization       NodeLabel = "Org"
	Root               NodeLabel = "Root"
	OrganizationalUnit NodeLabel = "OrganizationalUnit"
	Account            NodeLabel = "Account"
)

// AsNeo4j flattens a node into the property map stored on the Neo4j node.
// Nested maps become sorted key/value lists since Neo4j properties can't hold
// maps.
func AsNeo4j(object Node) map[string]interface{} {
	objectMap, err := json.Marshal(object)
	if err != nil {
		return nil
	}

	var objectMapInterface map[string]interface{}
	if err := json.Unmarshal(objectMap, &objectMapInterface); err != nil {
		return nil
	}

	for key, value := range objectMapInterface {
		nested, isMap := value.(map[string]interface{})
		if !isMap {
			continue
		}
		keys := make([]string, 0, len(nested))
		for k := range nested {
			keys = append(keys, k)
		}
		slices.Sort(keys)

		var valueArray []string
		for _, k := range keys {
			valueString, _ := nested[k].(string)
			if valueString != "" {
				valueArray = append(valueArray, k, valueString)
			}
		}
		objectMapInterface[key] = valueArray
	}
	return objectMapInterface
}
