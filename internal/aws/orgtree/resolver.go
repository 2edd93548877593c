package orgtree

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/organizations/types"
)

// DefaultMaxDepth bounds both the upward parent walk and the downward OU
// walk. AWS allows five levels of nested OUs below the root.
const DefaultMaxDepth = 10

const rootIDPrefix = "r-"

var (
	ErrNoRoot            = errors.New("organization has no root")
	ErrMaxDepthExceeded  = errors.New("maximum hierarchy depth exceeded")
	ErrUnexpectedParents = errors.New("expected exactly one parent")
	ErrInconsistent      = errors.New("inventory is inconsistent")
)

// Directory is the part of the organizations service the walk reads from.
// List calls return every page.
type Directory interface {
	ListRoots(ctx context.Context) ([]types.Root, error)
	ListChildren(ctx context.Context, parentID string, childType types.ChildType) ([]types.Child, error)
	ListParents(ctx context.Context, childID string) ([]types.Parent, error)
	DescribeOrganizationalUnit(ctx context.Context, ouID string) (*types.OrganizationalUnit, error)
	DescribeAccount(ctx context.Context, accountID string) (*types.Account, error)
}

// IsRootID reports whether id names an organization root.
func IsRootID(id string) bool {
	return strings.HasPrefix(id, rootIDPrefix)
}

type Resolver struct {
	Directory Directory
	MaxDepth  int
}

// ResolvePath returns the names of nodeID's ancestors, closest first, with
// RootName as the last element.
func (r *Resolver) ResolvePath(ctx context.Context, nodeID string) ([]string, error) {
	maxDepth := r.MaxDepth
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}

	var names []string
	current := nodeID
	for depth := 0; depth <= maxDepth; depth++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		parents, err := r.Directory.ListParents(ctx, current)
		if err != nil {
			return nil, fmt.Errorf("resolving path of %s: %w", nodeID, err)
		}
		if len(parents) != 1 {
			return nil, fmt.Errorf("resolving path of %s: %s has %d parents: %w", nodeID, current, len(parents), ErrUnexpectedParents)
		}

		parentID := aws.ToString(parents[0].Id)
		if parents[0].Type == types.ParentTypeRoot || IsRootID(parentID) {
			return append(names, RootName), nil
		}

		ou, err := r.Directory.DescribeOrganizationalUnit(ctx, parentID)
		if err != nil {
			return nil, fmt.Errorf("resolving path of %s: %w", nodeID, err)
		}
		names = append(names, aws.ToString(ou.Name))
		current = parentID
	}
	return nil, fmt.Errorf("resolving path of %s: more than %d levels: %w", nodeID, maxDepth, ErrMaxDepthExceeded)
}

// JoinPath turns ResolvePath output into a root-first path such as
// /Root/Engineering/Prod.
func JoinPath(names []string) string {
	var b strings.Builder
	for i := len(names) - 1; i >= 0; i-- {
		b.WriteString("/")
		b.WriteString(names[i])
	}
	return b.String()
}
