package orgtree

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/organizations/types"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Progress counts what a walk has finished so far. It is safe to read while
// the walk is running.
type Progress struct {
	OUs      atomic.Int64
	Accounts atomic.Int64
}

// Builder walks an organization from its root down.
//
// With Concurrency of one or less every directory call happens in sequence,
// depth first. Higher values visit sibling OUs in parallel and fetch up to
// Concurrency account details of an OU at a time. Each branch returns its own
// account list and lists are merged in listing order, so the result is the
// same either way.
type Builder struct {
	Directory   Directory
	MaxDepth    int
	Concurrency int
	Progress    *Progress
	Log         *logrus.Entry

	resolver *Resolver
}

func (b *Builder) maxDepth() int {
	if b.MaxDepth <= 0 {
		return DefaultMaxDepth
	}
	return b.MaxDepth
}

func (b *Builder) logger() *logrus.Entry {
	if b.Log == nil {
		b.Log = logrus.NewEntry(logrus.StandardLogger())
	}
	return b.Log
}

func (b *Builder) init() {
	if b.resolver == nil {
		b.resolver = &Resolver{Directory: b.Directory, MaxDepth: b.maxDepth()}
	}
	if b.Progress == nil {
		b.Progress = &Progress{}
	}
	b.logger()
}

// Build discovers the organization root and walks every OU beneath it.
func (b *Builder) Build(ctx context.Context) (*Inventory, error) {
	b.init()

	roots, err := b.Directory.ListRoots(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing roots: %w", err)
	}
	if len(roots) == 0 {
		return nil, ErrNoRoot
	}
	if len(roots) > 1 {
		b.Log.Warnf("organization returned %d roots, using %s", len(roots), aws.ToString(roots[0].Id))
	}
	root := roots[0]
	rootID := aws.ToString(root.Id)

	inventory := &Inventory{
		Root: OrgRoot{
			Id:   rootID,
			Arn:  aws.ToString(root.Arn),
			Name: aws.ToString(root.Name),
		},
	}

	inventory.Root.Accounts, err = b.accounts(ctx, rootID, RootName)
	if err != nil {
		return nil, err
	}

	topLevel, err := b.Directory.ListChildren(ctx, rootID, types.ChildTypeOrganizationalUnit)
	if err != nil {
		return nil, fmt.Errorf("listing OUs of root %s: %w", rootID, err)
	}

	type branch struct {
		node     OuNode
		accounts []Account
	}
	branches, err := fanOut(ctx, b.Concurrency, 0, len(topLevel), func(ctx context.Context, i int) (branch, error) {
		node, accounts, err := b.Visit(ctx, aws.ToString(topLevel[i].Id), rootID)
		return branch{node, accounts}, err
	})
	if err != nil {
		return nil, err
	}

	inventory.Root.Children = make([]OuNode, 0, len(branches))
	inventory.Accounts = append([]Account{}, inventory.Root.Accounts...)
	for _, br := range branches {
		inventory.Root.Children = append(inventory.Root.Children, br.node)
		inventory.Accounts = append(inventory.Accounts, br.accounts...)
	}
	return inventory, nil
}

// Visit builds the subtree rooted at ouID. It returns the OU and every
// account found in it or below it, in depth-first order.
func (b *Builder) Visit(ctx context.Context, ouID string, parentID string) (OuNode, []Account, error) {
	b.init()
	return b.visit(ctx, ouID, parentID, 1)
}

func (b *Builder) visit(ctx context.Context, ouID string, parentID string, depth int) (OuNode, []Account, error) {
	if depth > b.maxDepth() {
		return OuNode{}, nil, fmt.Errorf("visiting %s: %w", ouID, ErrMaxDepthExceeded)
	}
	if err := ctx.Err(); err != nil {
		return OuNode{}, nil, err
	}

	ou, err := b.Directory.DescribeOrganizationalUnit(ctx, ouID)
	if err != nil {
		return OuNode{}, nil, fmt.Errorf("visiting %s: %w", ouID, err)
	}
	name := aws.ToString(ou.Name)
	b.Log.Debugf("visiting OU %s (%s)", name, ouID)

	accounts, err := b.accounts(ctx, ouID, name)
	if err != nil {
		return OuNode{}, nil, err
	}

	childOUs, err := b.Directory.ListChildren(ctx, ouID, types.ChildTypeOrganizationalUnit)
	if err != nil {
		return OuNode{}, nil, fmt.Errorf("listing OUs of %s: %w", ouID, err)
	}

	type branch struct {
		node     OuNode
		accounts []Account
	}
	branches, err := fanOut(ctx, b.Concurrency, 0, len(childOUs), func(ctx context.Context, i int) (branch, error) {
		node, accounts, err := b.visit(ctx, aws.ToString(childOUs[i].Id), ouID, depth+1)
		return branch{node, accounts}, err
	})
	if err != nil {
		return OuNode{}, nil, err
	}

	node := OuNode{
		Id:       ouID,
		Arn:      aws.ToString(ou.Arn),
		Name:     name,
		Parent:   parentID,
		Accounts: accounts,
		Children: make([]OuNode, 0, len(branches)),
	}
	flat := append([]Account{}, accounts...)
	for _, br := range branches {
		node.Children = append(node.Children, br.node)
		flat = append(flat, br.accounts...)
	}

	b.Progress.OUs.Add(1)
	return node, flat, nil
}

// accounts fetches the direct member accounts of parentID. The returned slice
// is never nil.
func (b *Builder) accounts(ctx context.Context, parentID string, parentName string) ([]Account, error) {
	children, err := b.Directory.ListChildren(ctx, parentID, types.ChildTypeAccount)
	if err != nil {
		return nil, fmt.Errorf("listing accounts of %s: %w", parentID, err)
	}

	accounts, err := fanOut(ctx, b.Concurrency, b.Concurrency, len(children), func(ctx context.Context, i int) (Account, error) {
		return b.account(ctx, aws.ToString(children[i].Id), parentName)
	})
	if err != nil {
		return nil, err
	}
	return accounts, nil
}

func (b *Builder) account(ctx context.Context, accountID string, parentName string) (Account, error) {
	detail, err := b.Directory.DescribeAccount(ctx, accountID)
	if err != nil {
		return Account{}, fmt.Errorf("describing account %s: %w", accountID, err)
	}
	names, err := b.resolver.ResolvePath(ctx, accountID)
	if err != nil {
		return Account{}, err
	}

	b.Progress.Accounts.Add(1)
	return Account{
		Id:              aws.ToString(detail.Id),
		Arn:             aws.ToString(detail.Arn),
		Email:           aws.ToString(detail.Email),
		Name:            aws.ToString(detail.Name),
		Status:          string(detail.Status),
		JoinedMethod:    string(detail.JoinedMethod),
		JoinedTimestamp: FormatTimestamp(detail.JoinedTimestamp),
		Parent:          parentName,
		Path:            JoinPath(names),
	}, nil
}

// fanOut runs fn for 0..n-1 and returns the results in index order. With
// concurrency of one or less the calls run in sequence. limit caps the
// number of goroutines running at once; zero leaves it uncapped, which is
// required when fn itself fans out.
func fanOut[T any](ctx context.Context, concurrency int, limit int, n int, fn func(ctx context.Context, i int) (T, error)) ([]T, error) {
	out := make([]T, n)
	if concurrency <= 1 {
		for i := 0; i < n; i++ {
			v, err := fn(ctx, i)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i := 0; i < n; i++ {
		g.Go(func() error {
			v, err := fn(gctx, i)
			if err != nil {
				return err
			}
			out[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
