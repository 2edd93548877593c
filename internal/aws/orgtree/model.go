package orgtree

import (
	"bytes"
	"time"

	"github.com/goccy/go-json"
)

// TimestampLayout is the format account join times are written in.
const TimestampLayout = "2006-01-02T15:04:05"

// emptyMarker stands in for an empty Accounts or Children list in the tree
// document.
const emptyMarker = "NULL"

// RootName is the first segment of every account path.
const RootName = "Root"

// OrgRoot is the top of the tree. Accounts holds the accounts attached
// directly to the root, usually just the management account.
type OrgRoot struct {
	Id       string
	Arn      string
	Name     string
	Accounts []Account
	Children []OuNode
}

// OuNode is an organizational unit and everything below it. Once returned by
// the builder both Accounts and Children are non-nil; an OU without members
// has zero-length lists, never nil ones.
type OuNode struct {
	Id       string
	Arn      string
	Name     string
	Parent   string
	Accounts []Account
	Children []OuNode
}

type Account struct {
	Id              string
	Arn             string
	Email           string
	Name            string
	Status          string
	JoinedMethod    string
	JoinedTimestamp string
	Parent          string
	Path            string
}

// Inventory is the result of a full walk.
type Inventory struct {
	Root OrgRoot
	// Accounts holds every account found, in depth-first order.
	Accounts []Account
}

// FormatTimestamp renders t the way the account list stores join times.
func FormatTimestamp(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(TimestampLayout)
}

type ouNodeJSON struct {
	Id       string
	Arn      string
	Name     string
	Parent   string
	Accounts json.RawMessage
	Children json.RawMessage
}

func (n OuNode) MarshalJSON() ([]byte, error) {
	accounts, err := marshalList(n.Accounts, len(n.Accounts))
	if err != nil {
		return nil, err
	}
	children, err := marshalList(n.Children, len(n.Children))
	if err != nil {
		return nil, err
	}
	return json.Marshal(ouNodeJSON{
		Id:       n.Id,
		Arn:      n.Arn,
		Name:     n.Name,
		Parent:   n.Parent,
		Accounts: accounts,
		Children: children,
	})
}

func (n *OuNode) UnmarshalJSON(data []byte) error {
	var raw ouNodeJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	n.Id = raw.Id
	n.Arn = raw.Arn
	n.Name = raw.Name
	n.Parent = raw.Parent
	n.Accounts = []Account{}
	n.Children = []OuNode{}
	if err := unmarshalList(raw.Accounts, &n.Accounts); err != nil {
		return err
	}
	return unmarshalList(raw.Children, &n.Children)
}

type orgRootJSON struct {
	Id       string
	Arn      string
	Name     string
	Accounts json.RawMessage
	Children json.RawMessage
}

func (r OrgRoot) MarshalJSON() ([]byte, error) {
	accounts, err := marshalList(r.Accounts, len(r.Accounts))
	if err != nil {
		return nil, err
	}
	children, err := marshalList(r.Children, len(r.Children))
	if err != nil {
		return nil, err
	}
	return json.Marshal(orgRootJSON{
		Id:       r.Id,
		Arn:      r.Arn,
		Name:     r.Name,
		Accounts: accounts,
		Children: children,
	})
}

func (r *OrgRoot) UnmarshalJSON(data []byte) error {
	var raw orgRootJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.Id = raw.Id
	r.Arn = raw.Arn
	r.Name = raw.Name
	r.Accounts = []Account{}
	r.Children = []OuNode{}
	if err := unmarshalList(raw.Accounts, &r.Accounts); err != nil {
		return err
	}
	return unmarshalList(raw.Children, &r.Children)
}

func marshalList(v any, n int) (json.RawMessage, error) {
	if n == 0 {
		return json.Marshal(emptyMarker)
	}
	return json.Marshal(v)
}

func unmarshalList[T any](data json.RawMessage, out *[]T) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) || bytes.Equal(trimmed, []byte(`"`+emptyMarker+`"`)) {
		return nil
	}
	var items []T
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return err
	}
	if items != nil {
		*out = items
	}
	return nil
}

// Walk calls fn for every OU below the root in depth-first pre-order. path
// holds the names from the root's first child down to the OU itself.
func (r *OrgRoot) Walk(fn func(node *OuNode, path []string) error) error {
	for i := range r.Children {
		if err := walk(&r.Children[i], nil, fn); err != nil {
			return err
		}
	}
	return nil
}

func walk(node *OuNode, parents []string, fn func(*OuNode, []string) error) error {
	path := append(append([]string(nil), parents...), node.Name)
	if err := fn(node, path); err != nil {
		return err
	}
	for i := range node.Children {
		if err := walk(&node.Children[i], path, fn); err != nil {
			return err
		}
	}
	return nil
}
