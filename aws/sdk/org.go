package sdk

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/organizations"
	orgTypes "github.com/aws/aws-sdk-go-v2/service/organizations/types"
	"github.com/cenkalti/backoff/v5"
	"github.com/patrickmn/go-cache"
)

type OrganizationsClientInterface interface {
	ListAccounts(ctx context.Context, params *organizations.ListAccountsInput, optFns ...func(*organizations.Options)) (*organizations.ListAccountsOutput, error)
	DescribeOrganization(ctx context.Context, params *organizations.DescribeOrganizationInput, optFns ...func(*organizations.Options)) (*organizations.DescribeOrganizationOutput, error)
	ListRoots(ctx context.Context, params *organizations.ListRootsInput, optFns ...func(*organizations.Options)) (*organizations.ListRootsOutput, error)
	ListChildren(ctx context.Context, params *organizations.ListChildrenInput, optFns ...func(*organizations.Options)) (*organizations.ListChildrenOutput, error)
	ListParents(ctx context.Context, params *organizations.ListParentsInput, optFns ...func(*organizations.Options)) (*organizations.ListParentsOutput, error)
	DescribeOrganizationalUnit(ctx context.Context, params *organizations.DescribeOrganizationalUnitInput, optFns ...func(*organizations.Options)) (*organizations.DescribeOrganizationalUnitOutput, error)
	DescribeAccount(ctx context.Context, params *organizations.DescribeAccountInput, optFns ...func(*organizations.Options)) (*organizations.DescribeAccountOutput, error)
}

const (
	DefaultThrottleAttempts = 8
	DefaultInitialInterval  = 500 * time.Millisecond
	DefaultMaxInterval      = 20 * time.Second
)

// OrgDirectory wraps an organizations client with pagination, throttle
// retries, a cap on in-flight calls and a cache that lives as long as the
// OrgDirectory itself. Nothing is persisted to disk.
type OrgDirectory struct {
	Client OrganizationsClientInterface

	// ThrottleAttempts bounds how many times a throttled call is tried.
	ThrottleAttempts uint
	InitialInterval  time.Duration
	MaxInterval      time.Duration

	slots chan struct{}
	cache *cache.Cache
}

// NewOrgDirectory returns a directory allowing at most maxInFlight concurrent
// requests against client. Values below one are treated as one.
func NewOrgDirectory(client OrganizationsClientInterface, maxInFlight int) *OrgDirectory {
	if maxInFlight < 1 {
		maxInFlight = 1
	}
	return &OrgDirectory{
		Client:           client,
		ThrottleAttempts: DefaultThrottleAttempts,
		InitialInterval:  DefaultInitialInterval,
		MaxInterval:      DefaultMaxInterval,
		slots:            make(chan struct{}, maxInFlight),
		cache:            cache.New(cache.NoExpiration, 0),
	}
}

func (d *OrgDirectory) newBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = d.InitialInterval
	b.MaxInterval = d.MaxInterval
	return b
}

func (d *OrgDirectory) acquire(ctx context.Context) error {
	select {
	case d.slots <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *OrgDirectory) release() {
	<-d.slots
}

// call runs a single remote request. Throttling is retried with exponential
// backoff; every other failure is returned at once as an *OrgError.
func call[T any](ctx context.Context, d *OrgDirectory, op string, id string, fn func(ctx context.Context) (T, error)) (T, error) {
	attempts := d.ThrottleAttempts
	if attempts == 0 {
		attempts = DefaultThrottleAttempts
	}
	return backoff.Retry(ctx, func() (T, error) {
		var zero T
		if err := ctx.Err(); err != nil {
			return zero, backoff.Permanent(err)
		}
		if err := d.acquire(ctx); err != nil {
			return zero, backoff.Permanent(err)
		}
		out, err := fn(ctx)
		d.release()
		if err != nil {
			if ctx.Err() != nil {
				return zero, backoff.Permanent(ctx.Err())
			}
			orgErr := NewOrgError(op, id, err)
			if orgErr.Kind == KindThrottled {
				sharedLogger.Warnf("throttled on %s %s, backing off", op, id)
				return zero, orgErr
			}
			return zero, backoff.Permanent(orgErr)
		}
		return out, nil
	}, backoff.WithBackOff(d.newBackOff()), backoff.WithMaxTries(attempts))
}

func (d *OrgDirectory) ListRoots(ctx context.Context) ([]orgTypes.Root, error) {
	cacheKey := "organizations-ListRoots"
	if cached, found := d.cache.Get(cacheKey); found {
		return cached.([]orgTypes.Root), nil
	}

	var roots []orgTypes.Root
	paginator := organizations.NewListRootsPaginator(d.Client, &organizations.ListRootsInput{})
	for paginator.HasMorePages() {
		page, err := call(ctx, d, "ListRoots", "", func(ctx context.Context) (*organizations.ListRootsOutput, error) {
			return paginator.NextPage(ctx)
		})
		if err != nil {
			return nil, err
		}
		roots = append(roots, page.Roots...)
	}
	d.cache.Set(cacheKey, roots, cache.DefaultExpiration)
	return roots, nil
}

// ListChildren drains every page of children of the given type.
func (d *OrgDirectory) ListChildren(ctx context.Context, parentID string, childType orgTypes.ChildType) ([]orgTypes.Child, error) {
	var children []orgTypes.Child
	paginator := organizations.NewListChildrenPaginator(d.Client, &organizations.ListChildrenInput{
		ParentId:  &parentID,
		ChildType: childType,
	})
	for paginator.HasMorePages() {
		page, err := call(ctx, d, "ListChildren", fmt.Sprintf("%s (%s)", parentID, childType), func(ctx context.Context) (*organizations.ListChildrenOutput, error) {
			return paginator.NextPage(ctx)
		})
		if err != nil {
			return nil, err
		}
		children = append(children, page.Children...)
	}
	return children, nil
}

func (d *OrgDirectory) ListParents(ctx context.Context, childID string) ([]orgTypes.Parent, error) {
	cacheKey := fmt.Sprintf("organizations-ListParents-%s", childID)
	if cached, found := d.cache.Get(cacheKey); found {
		return cached.([]orgTypes.Parent), nil
	}

	var parents []orgTypes.Parent
	paginator := organizations.NewListParentsPaginator(d.Client, &organizations.ListParentsInput{
		ChildId: &childID,
	})
	for paginator.HasMorePages() {
		page, err := call(ctx, d, "ListParents", childID, func(ctx context.Context) (*organizations.ListParentsOutput, error) {
			return paginator.NextPage(ctx)
		})
		if err != nil {
			return nil, err
		}
		parents = append(parents, page.Parents...)
	}
	d.cache.Set(cacheKey, parents, cache.DefaultExpiration)
	return parents, nil
}

func (d *OrgDirectory) DescribeOrganizationalUnit(ctx context.Context, ouID string) (*orgTypes.OrganizationalUnit, error) {
	cacheKey := fmt.Sprintf("organizations-DescribeOrganizationalUnit-%s", ouID)
	if cached, found := d.cache.Get(cacheKey); found {
		return cached.(*orgTypes.OrganizationalUnit), nil
	}

	out, err := call(ctx, d, "DescribeOrganizationalUnit", ouID, func(ctx context.Context) (*organizations.DescribeOrganizationalUnitOutput, error) {
		return d.Client.DescribeOrganizationalUnit(ctx, &organizations.DescribeOrganizationalUnitInput{
			OrganizationalUnitId: &ouID,
		})
	})
	if err != nil {
		return nil, err
	}
	if out.OrganizationalUnit == nil {
		return nil, NewOrgError("DescribeOrganizationalUnit", ouID, errEmptyResponse)
	}
	d.cache.Set(cacheKey, out.OrganizationalUnit, cache.DefaultExpiration)
	return out.OrganizationalUnit, nil
}

func (d *OrgDirectory) DescribeAccount(ctx context.Context, accountID string) (*orgTypes.Account, error) {
	out, err := call(ctx, d, "DescribeAccount", accountID, func(ctx context.Context) (*organizations.DescribeAccountOutput, error) {
		return d.Client.DescribeAccount(ctx, &organizations.DescribeAccountInput{
			AccountId: &accountID,
		})
	})
	if err != nil {
		return nil, err
	}
	if out.Account == nil {
		return nil, NewOrgError("DescribeAccount", accountID, errEmptyResponse)
	}
	return out.Account, nil
}

func (d *OrgDirectory) DescribeOrganization(ctx context.Context) (*orgTypes.Organization, error) {
	cacheKey := "organizations-DescribeOrganization"
	if cached, found := d.cache.Get(cacheKey); found {
		return cached.(*orgTypes.Organization), nil
	}

	out, err := call(ctx, d, "DescribeOrganization", "", func(ctx context.Context) (*organizations.DescribeOrganizationOutput, error) {
		return d.Client.DescribeOrganization(ctx, &organizations.DescribeOrganizationInput{})
	})
	if err != nil {
		return nil, err
	}
	d.cache.Set(cacheKey, out.Organization, cache.DefaultExpiration)
	return out.Organization, nil
}

// ListAccounts returns every account in the organization regardless of
// where it sits in the hierarchy.
func (d *OrgDirectory) ListAccounts(ctx context.Context) ([]orgTypes.Account, error) {
	var accounts []orgTypes.Account
	paginator := organizations.NewListAccountsPaginator(d.Client, &organizations.ListAccountsInput{})
	for paginator.HasMorePages() {
		page, err := call(ctx, d, "ListAccounts", "", func(ctx context.Context) (*organizations.ListAccountsOutput, error) {
			return paginator.NextPage(ctx)
		})
		if err != nil {
			return accounts, err
		}
		accounts = append(accounts, page.Accounts...)
	}
	return accounts, nil
}
