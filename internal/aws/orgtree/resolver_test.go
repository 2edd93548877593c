package orgtree

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/BishopFox/orgtree/aws/sdk"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/organizations/types"
)

func newTestDirectory(client *sdk.MockedOrgClient, maxInFlight int) *sdk.OrgDirectory {
	d := sdk.NewOrgDirectory(client, maxInFlight)
	d.InitialInterval = time.Millisecond
	d.MaxInterval = 2 * time.Millisecond
	return d
}

func TestResolvePath(t *testing.T) {
	var tests = []struct {
		nodeID   string
		expected []string
		path     string
	}{
		{"222222222222", []string{"Prod", "Engineering", "Root"}, "/Root/Engineering/Prod"},
		{"555555555555", []string{"Engineering", "Root"}, "/Root/Engineering"},
		{"111111111111", []string{"Root"}, "/Root"},
		{"ou-ab12-dev00001", []string{"Engineering", "Root"}, "/Root/Engineering"},
		{"ou-ab12-sbx00001", []string{"Root"}, "/Root"},
	}

	r := Resolver{Directory: newTestDirectory(sdk.NewMockedOrgClient(), 1)}
	for _, test := range tests {
		names, err := r.ResolvePath(context.TODO(), test.nodeID)
		if err != nil {
			t.Fatalf("%s: unexpected error: %s", test.nodeID, err)
		}
		if strings.Join(names, ",") != strings.Join(test.expected, ",") {
			t.Errorf("%s: got %v, expected %v", test.nodeID, names, test.expected)
		}
		if got := JoinPath(names); got != test.path {
			t.Errorf("%s: got path %s, expected %s", test.nodeID, got, test.path)
		}
	}
}

func TestResolvePathDepthGuard(t *testing.T) {
	r := Resolver{Directory: newTestDirectory(sdk.NewMockedOrgClient(), 1), MaxDepth: 1}
	_, err := r.ResolvePath(context.TODO(), "222222222222")
	if !errors.Is(err, ErrMaxDepthExceeded) {
		t.Fatalf("expected ErrMaxDepthExceeded, got %v", err)
	}

	r.MaxDepth = 2
	if _, err := r.ResolvePath(context.TODO(), "222222222222"); err != nil {
		t.Fatalf("two levels should resolve, got %s", err)
	}
}

func TestResolvePathCycle(t *testing.T) {
	client := sdk.NewMockedOrgClient()
	client.Parents["ou-ab12-eng00001"] = "ou-ab12-prd00001"

	r := Resolver{Directory: newTestDirectory(client, 1)}
	_, err := r.ResolvePath(context.TODO(), "444444444444")
	if !errors.Is(err, ErrMaxDepthExceeded) {
		t.Fatalf("expected ErrMaxDepthExceeded, got %v", err)
	}
}

type parentsOverride struct {
	Directory
	parents []types.Parent
}

func (p parentsOverride) ListParents(ctx context.Context, childID string) ([]types.Parent, error) {
	return p.parents, nil
}

func TestResolvePathUnexpectedParents(t *testing.T) {
	var tests = []struct {
		name    string
		parents []types.Parent
	}{
		{"none", nil},
		{"two", []types.Parent{
			{Id: aws.String("ou-ab12-eng00001"), Type: types.ParentTypeOrganizationalUnit},
			{Id: aws.String("ou-ab12-sec00001"), Type: types.ParentTypeOrganizationalUnit},
		}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			r := Resolver{Directory: parentsOverride{
				Directory: newTestDirectory(sdk.NewMockedOrgClient(), 1),
				parents:   test.parents,
			}}
			_, err := r.ResolvePath(context.TODO(), "222222222222")
			if !errors.Is(err, ErrUnexpectedParents) {
				t.Fatalf("expected ErrUnexpectedParents, got %v", err)
			}
		})
	}
}

func TestResolvePathPropagatesErrors(t *testing.T) {
	client := sdk.NewMockedOrgClient()
	client.Failures = map[string]error{
		"DescribeOrganizationalUnit/ou-ab12-eng00001": &types.AccessDeniedException{Message: aws.String("denied")},
	}
	r := Resolver{Directory: newTestDirectory(client, 1)}
	_, err := r.ResolvePath(context.TODO(), "222222222222")
	if kind := sdk.OrgErrorKindOf(err); kind != sdk.KindAccessDenied {
		t.Fatalf("expected AccessDenied, got %s (%v)", kind, err)
	}
	if !strings.Contains(err.Error(), "222222222222") {
		t.Fatalf("error should name the account being resolved: %s", err)
	}
}

func TestIsRootID(t *testing.T) {
	if !IsRootID("r-ab12") {
		t.Error("r-ab12 should be a root")
	}
	if IsRootID("ou-ab12-eng00001") || IsRootID("111111111111") {
		t.Error("OU and account IDs are not roots")
	}
}
