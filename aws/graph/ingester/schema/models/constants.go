package models

import (
	"strings"

	"github.com/BishopFox/orgtree/aws/graph/ingester/schema"
)

// NodeLabelToNodeMap returns a fresh, empty model for each label so that
// every decoded line gets its own value.
var NodeLabelToNodeMap = map[schema.NodeLabel]func() schema.Node{
	schema.Root:               func() schema.Node { return &Root{} },
	schema.OrganizationalUnit: func() schema.Node { return &OrganizationalUnit{} },
	schema.Account:            func() schema.Node { return &Account{} },
}

const rootIDPrefix = "r-"

// containerLabel tells whether parentID names the root or an OU.
func containerLabel(parentID string) schema.NodeLabel {
	if strings.HasPrefix(parentID, rootIDPrefix) {
		return schema.Root
	}
	return schema.OrganizationalUnit
}
