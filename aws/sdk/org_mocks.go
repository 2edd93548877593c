package sdk

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/organizations"
	organizationsTypes "github.com/aws/aws-sdk-go-v2/service/organizations/types"
)

// MockedOrgClient serves a fixed organization. Parents maps every OU and
// account ID to the ID of its direct parent; listing order follows the order
// of OUs and Accounts.
type MockedOrgClient struct {
	Root     organizationsTypes.Root
	OUs      []organizationsTypes.OrganizationalUnit
	Accounts []organizationsTypes.Account
	Parents  map[string]string

	// PageSize limits how many entries a list call returns per page. Zero
	// means everything on one page.
	PageSize int
	// ReverseListing lists children in the opposite order, as a directory is
	// free to do between calls.
	ReverseListing bool

	// Failures makes "<Operation>/<id>" fail with the given error.
	Failures map[string]error
	// Throttles makes "<Operation>/<id>" return TooManyRequestsException this
	// many times before succeeding.
	Throttles map[string]int

	mu    sync.Mutex
	calls map[string]int
}

var mockJoined = time.Date(2023, 5, 1, 12, 0, 0, 0, time.UTC)

// NewMockedOrgClient returns a small organization:
//
//	Root (r-ab12)
//	├── 111111111111 management
//	├── Engineering
//	│   ├── 555555555555 eng-shared
//	│   ├── Prod: 222222222222 prod-a, 333333333333 prod-b
//	│   └── Dev: 444444444444 dev
//	├── Security: 666666666666 audit
//	└── Sandbox (empty)
func NewMockedOrgClient() *MockedOrgClient {
	ou := func(id, name string) organizationsTypes.OrganizationalUnit {
		return organizationsTypes.OrganizationalUnit{
			Id:   aws.String(id),
			Name: aws.String(name),
			Arn:  aws.String("arn:aws:organizations::111111111111:ou/o-exampleorgid/" + id),
		}
	}
	account := func(id, name string, status organizationsTypes.AccountStatus, method organizationsTypes.AccountJoinedMethod) organizationsTypes.Account {
		return organizationsTypes.Account{
			Id:              aws.String(id),
			Name:            aws.String(name),
			Arn:             aws.String("arn:aws:organizations::111111111111:account/o-exampleorgid/" + id),
			Email:           aws.String(name + "@bishopfox.com"),
			Status:          status,
			JoinedMethod:    method,
			JoinedTimestamp: aws.Time(mockJoined),
		}
	}

	return &MockedOrgClient{
		Root: organizationsTypes.Root{
			Id:   aws.String("r-ab12"),
			Arn:  aws.String("arn:aws:organizations::111111111111:root/o-exampleorgid/r-ab12"),
			Name: aws.String("Root"),
		},
		OUs: []organizationsTypes.OrganizationalUnit{
			ou("ou-ab12-eng00001", "Engineering"),
			ou("ou-ab12-prd00001", "Prod"),
			ou("ou-ab12-dev00001", "Dev"),
			ou("ou-ab12-sec00001", "Security"),
			ou("ou-ab12-sbx00001", "Sandbox"),
		},
		Accounts: []organizationsTypes.Account{
			account("111111111111", "management", organizationsTypes.AccountStatusActive, organizationsTypes.AccountJoinedMethodCreated),
			account("222222222222", "prod-a", organizationsTypes.AccountStatusActive, organizationsTypes.AccountJoinedMethodCreated),
			account("333333333333", "prod-b", organizationsTypes.AccountStatusSuspended, organizationsTypes.AccountJoinedMethodInvited),
			account("444444444444", "dev", organizationsTypes.AccountStatusActive, organizationsTypes.AccountJoinedMethodCreated),
			account("555555555555", "eng-shared", organizationsTypes.AccountStatusPendingClosure, organizationsTypes.AccountJoinedMethodInvited),
			account("666666666666", "audit", organizationsTypes.AccountStatusActive, organizationsTypes.AccountJoinedMethodCreated),
		},
		Parents: map[string]string{
			"ou-ab12-eng00001": "r-ab12",
			"ou-ab12-prd00001": "ou-ab12-eng00001",
			"ou-ab12-dev00001": "ou-ab12-eng00001",
			"ou-ab12-sec00001": "r-ab12",
			"ou-ab12-sbx00001": "r-ab12",
			"111111111111":     "r-ab12",
			"222222222222":     "ou-ab12-prd00001",
			"333333333333":     "ou-ab12-prd00001",
			"444444444444":     "ou-ab12-dev00001",
			"555555555555":     "ou-ab12-eng00001",
			"666666666666":     "ou-ab12-sec00001",
		},
	}
}

// Calls reports how many times "<Operation>/<id>" was invoked.
func (m *MockedOrgClient) Calls(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[key]
}

func (m *MockedOrgClient) record(op string, id string) error {
	key := op + "/" + id
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.calls == nil {
		m.calls = make(map[string]int)
	}
	m.calls[key]++
	if err, ok := m.Failures[key]; ok {
		return err
	}
	if m.Throttles[key] > 0 {
		m.Throttles[key]--
		return &organizationsTypes.TooManyRequestsException{Message: aws.String("Rate exceeded")}
	}
	return nil
}

func (m *MockedOrgClient) page(total int, token *string) (int, int, *string) {
	start := 0
	if token != nil {
		start, _ = strconv.Atoi(aws.ToString(token))
	}
	end := total
	if m.PageSize > 0 && start+m.PageSize < total {
		end = start + m.PageSize
	}
	var next *string
	if end < total {
		next = aws.String(strconv.Itoa(end))
	}
	return start, end, next
}

func (m *MockedOrgClient) knows(id string) bool {
	if id == aws.ToString(m.Root.Id) {
		return true
	}
	_, ok := m.Parents[id]
	return ok
}

func (m *MockedOrgClient) ListAccounts(ctx context.Context, input *organizations.ListAccountsInput, options ...func(*organizations.Options)) (*organizations.ListAccountsOutput, error) {
	if err := m.record("ListAccounts", ""); err != nil {
		return nil, err
	}
	start, end, next := m.page(len(m.Accounts), input.NextToken)
	return &organizations.ListAccountsOutput{
		Accounts:  append([]organizationsTypes.Account(nil), m.Accounts[start:end]...),
		NextToken: next,
	}, nil
}

func (m *MockedOrgClient) DescribeOrganization(ctx context.Context, input *organizations.DescribeOrganizationInput, options ...func(*organizations.Options)) (*organizations.DescribeOrganizationOutput, error) {
	if err := m.record("DescribeOrganization", ""); err != nil {
		return nil, err
	}
	return &organizations.DescribeOrganizationOutput{
		Organization: &organizationsTypes.Organization{
			Arn:                aws.String("arn:aws:organizations::111111111111:organization/o-exampleorgid"),
			FeatureSet:         organizationsTypes.OrganizationFeatureSetAll,
			Id:                 aws.String("o-exampleorgid"),
			MasterAccountArn:   aws.String("arn:aws:organizations::111111111111:account/o-exampleorgid/111111111111"),
			MasterAccountEmail: aws.String("management@bishopfox.com"),
			MasterAccountId:    aws.String("111111111111"),
		},
	}, nil
}

func (m *MockedOrgClient) ListRoots(ctx context.Context, input *organizations.ListRootsInput, options ...func(*organizations.Options)) (*organizations.ListRootsOutput, error) {
	if err := m.record("ListRoots", ""); err != nil {
		return nil, err
	}
	if m.Root.Id == nil {
		return &organizations.ListRootsOutput{}, nil
	}
	return &organizations.ListRootsOutput{
		Roots: []organizationsTypes.Root{m.Root},
	}, nil
}

func (m *MockedOrgClient) ListChildren(ctx context.Context, input *organizations.ListChildrenInput, options ...func(*organizations.Options)) (*organizations.ListChildrenOutput, error) {
	parentID := aws.ToString(input.ParentId)
	if err := m.record("ListChildren", parentID); err != nil {
		return nil, err
	}
	if !m.knows(parentID) {
		return nil, &organizationsTypes.ParentNotFoundException{Message: aws.String(fmt.Sprintf("parent %s not found", parentID))}
	}

	var ids []string
	switch input.ChildType {
	case organizationsTypes.ChildTypeAccount:
		for _, a := range m.Accounts {
			if m.Parents[aws.ToString(a.Id)] == parentID {
				ids = append(ids, aws.ToString(a.Id))
			}
		}
	case organizationsTypes.ChildTypeOrganizationalUnit:
		for _, ou := range m.OUs {
			if m.Parents[aws.ToString(ou.Id)] == parentID {
				ids = append(ids, aws.ToString(ou.Id))
			}
		}
	default:
		return nil, &organizationsTypes.InvalidInputException{Message: aws.String("invalid child type")}
	}

	if m.ReverseListing {
		slices.Reverse(ids)
	}

	start, end, next := m.page(len(ids), input.NextToken)
	out := &organizations.ListChildrenOutput{NextToken: next}
	for _, id := range ids[start:end] {
		out.Children = append(out.Children, organizationsTypes.Child{Id: aws.String(id), Type: input.ChildType})
	}
	return out, nil
}

func (m *MockedOrgClient) ListParents(ctx context.Context, input *organizations.ListParentsInput, options ...func(*organizations.Options)) (*organizations.ListParentsOutput, error) {
	childID := aws.ToString(input.ChildId)
	if err := m.record("ListParents", childID); err != nil {
		return nil, err
	}
	parentID, ok := m.Parents[childID]
	if !ok {
		return nil, &organizationsTypes.ChildNotFoundException{Message: aws.String(fmt.Sprintf("child %s not found", childID))}
	}
	parentType := organizationsTypes.ParentTypeOrganizationalUnit
	if strings.HasPrefix(parentID, "r-") {
		parentType = organizationsTypes.ParentTypeRoot
	}
	return &organizations.ListParentsOutput{
		Parents: []organizationsTypes.Parent{{Id: aws.String(parentID), Type: parentType}},
	}, nil
}

func (m *MockedOrgClient) DescribeOrganizationalUnit(ctx context.Context, input *organizations.DescribeOrganizationalUnitInput, options ...func(*organizations.Options)) (*organizations.DescribeOrganizationalUnitOutput, error) {
	ouID := aws.ToString(input.OrganizationalUnitId)
	if err := m.record("DescribeOrganizationalUnit", ouID); err != nil {
		return nil, err
	}
	for i := range m.OUs {
		if aws.ToString(m.OUs[i].Id) == ouID {
			ou := m.OUs[i]
			return &organizations.DescribeOrganizationalUnitOutput{OrganizationalUnit: &ou}, nil
		}
	}
	return nil, &organizationsTypes.OrganizationalUnitNotFoundException{Message: aws.String(fmt.Sprintf("ou %s not found", ouID))}
}

func (m *MockedOrgClient) DescribeAccount(ctx context.Context, input *organizations.DescribeAccountInput, options ...func(*organizations.Options)) (*organizations.DescribeAccountOutput, error) {
	accountID := aws.ToString(input.AccountId)
	if err := m.record("DescribeAccount", accountID); err != nil {
		return nil, err
	}
	for i := range m.Accounts {
		if aws.ToString(m.Accounts[i].Id) == accountID {
			account := m.Accounts[i]
			return &organizations.DescribeAccountOutput{Account: &account}, nil
		}
	}
	return nil, &organizationsTypes.AccountNotFoundException{Message: aws.String(fmt.Sprintf("account %s not found", accountID))}
}
