package aws

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	ingestor "github.com/BishopFox/orgtree/aws/graph/ingester"
	"github.com/BishopFox/orgtree/aws/graph/ingester/schema/models"
	"github.com/BishopFox/orgtree/aws/sdk"
	"github.com/BishopFox/orgtree/console"
	"github.com/BishopFox/orgtree/globals"
	"github.com/BishopFox/orgtree/internal"
	"github.com/BishopFox/orgtree/internal/aws/orgtree"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/organizations/types"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/goccy/go-json"
	"github.com/sirupsen/logrus"
)

const jsonIndent = "    "

type OrgTreeModule struct {
	OrganizationsClient sdk.OrganizationsClientInterface
	Caller              sts.GetCallerIdentityOutput
	AWSProfile          string
	Goroutines          int
	MaxDepth            int
	WrapTable           bool

	Neo4jURI      string
	Neo4jUser     string
	Neo4jPassword string

	// Populated by PrintOrgTree
	Organization *types.Organization
	Inventory    *orgtree.Inventory
	Progress     *orgtree.Progress

	modLog *logrus.Entry
}

// PrintOrgTree walks the organization and writes the OU tree, the account
// list and their graph forms below outputDirectory. Nothing is written unless
// the walk completes and the result is consistent.
func (m *OrgTreeModule) PrintOrgTree(ctx context.Context, outputDirectory string, verbosity int) error {
	callingModule := globals.ORG_TREE_MODULE_NAME
	m.modLog = internal.TxtLog.WithFields(logrus.Fields{
		"module": callingModule,
	})
	outputName := fmt.Sprintf("%s-%s", aws.ToString(m.Caller.Account), m.AWSProfile)
	if m.AWSProfile == "" {
		m.AWSProfile = internal.BuildAWSPath(m.Caller)
		outputName = m.AWSProfile
	}

	if m.Progress == nil {
		m.Progress = &orgtree.Progress{}
	}
	directory := sdk.NewOrgDirectory(m.OrganizationsClient, m.Goroutines)

	fmt.Printf("[%s][%s] Walking the organization visible from account %s.\n", cyan(callingModule), cyan(m.AWSProfile), aws.ToString(m.Caller.Account))
	org, err := directory.DescribeOrganization(ctx)
	if err != nil {
		// the walk itself decides whether the caller can read the hierarchy
		m.modLog.Warnf("Failed to describe organization: %s", err)
	} else {
		m.Organization = org
		fmt.Printf("[%s][%s] Organization %s, management account %s.\n", cyan(callingModule), cyan(m.AWSProfile), aws.ToString(org.Id), aws.ToString(org.MasterAccountId))
	}

	builder := orgtree.Builder{
		Directory:   directory,
		MaxDepth:    m.MaxDepth,
		Concurrency: m.Goroutines,
		Progress:    m.Progress,
		Log:         m.modLog,
	}

	spinnerDone := make(chan struct{})
	spinnerFinished := make(chan struct{})
	go console.SpinUntil(callingModule, m.Progress, time.Second, spinnerDone, spinnerFinished)
	inventory, err := builder.Build(ctx)
	close(spinnerDone)
	<-spinnerFinished
	if err != nil {
		m.modLog.Errorf("Walk failed: %s", err)
		return fmt.Errorf("walking organization: %w", err)
	}
	if err := inventory.Validate(); err != nil {
		m.modLog.Errorf("Walk produced an inconsistent inventory: %s", err)
		return err
	}
	m.Inventory = inventory

	m.auditMembership(ctx, directory)
	if err := ctx.Err(); err != nil {
		m.modLog.Errorf("Run interrupted: %s", err)
		return fmt.Errorf("walking organization: %w", err)
	}

	tables := []internal.TableFile{m.accountTable()}
	documents, err := m.documents()
	if err != nil {
		m.modLog.Errorf("Encoding output failed: %s", err)
		return err
	}

	outputDir := filepath.Join(outputDirectory, globals.CLOUDFOX_BASE_DIRECTORY, "aws", outputName)
	o := internal.OutputClient{
		Verbosity:        verbosity,
		CallingModule:    callingModule,
		PrefixIdentifier: m.AWSProfile,
		Table: internal.TableClient{
			Wrap:          m.WrapTable,
			DirectoryName: outputDir,
		},
		Documents: internal.DocumentClient{
			DirectoryName: outputDir,
		},
	}
	if _, err := o.WriteFullOutput(tables, documents); err != nil {
		m.modLog.Errorf("Writing output failed: %s", err)
		return err
	}

	if verbosity >= 2 {
		fmt.Println(orgtree.RenderTree(inventory))
	}
	if m.Neo4jURI != "" {
		graphIngestor, err := ingestor.NewCloudFoxIngestor(m.Neo4jURI, m.Neo4jUser, m.Neo4jPassword)
		if err != nil {
			return fmt.Errorf("connecting to neo4j: %w", err)
		}
		if err := graphIngestor.Run(ctx, internal.FileSystem(), filepath.Join(outputDir, "graph")); err != nil {
			m.modLog.Errorf("Neo4j ingestion failed: %s", err)
			return fmt.Errorf("ingesting into neo4j: %w", err)
		}
		fmt.Printf("[%s][%s] Ingested the organization into %s.\n", cyan(callingModule), cyan(m.AWSProfile), m.Neo4jURI)
	}
	return nil
}

// Summary describes the last successful walk in one line.
func (m *OrgTreeModule) Summary() string {
	if m.Inventory == nil {
		return "No organization was mapped."
	}
	return fmt.Sprintf("[%s] %d OUs and %d accounts found.", m.AWSProfile, m.Inventory.OUCount(), len(m.Inventory.Accounts))
}

// auditMembership compares the walk against the organization's flat account
// list. Accounts the walk did not reach are only reported.
func (m *OrgTreeModule) auditMembership(ctx context.Context, directory *sdk.OrgDirectory) {
	listed, err := directory.ListAccounts(ctx)
	if err != nil {
		m.modLog.Warnf("Could not list accounts to cross-check the walk: %s", err)
		return
	}
	walked := make(map[string]bool, len(m.Inventory.Accounts))
	for _, id := range m.Inventory.AccountIDs() {
		walked[id] = true
	}
	var missing []string
	for _, a := range listed {
		if !walked[aws.ToString(a.Id)] {
			missing = append(missing, aws.ToString(a.Id))
		}
	}
	if len(missing) > 0 {
		m.modLog.Warnf("%d accounts were not reached by the walk: %s", len(missing), strings.Join(missing, ", "))
		fmt.Printf("[%s][%s] %s %d accounts in the organization were not reached by the walk.\n", cyan(globals.ORG_TREE_MODULE_NAME), cyan(m.AWSProfile), red("Warning:"), len(missing))
	}
}

func (m *OrgTreeModule) isManagementAccount(accountID string) bool {
	return m.Organization != nil && aws.ToString(m.Organization.MasterAccountId) == accountID
}

func (m *OrgTreeModule) accountTable() internal.TableFile {
	header := []string{
		"Name",
		"ID",
		"Status",
		"Joined Method",
		"Joined",
		"Parent",
		"Path",
		"Email",
		"Arn",
		"isManagementAccount?",
	}
	tableCols := []string{
		"Name",
		"ID",
		"Status",
		"Joined",
		"Parent",
		"Path",
	}

	var body [][]string
	for _, a := range m.Inventory.Accounts {
		body = append(body, []string{
			a.Name,
			a.Id,
			a.Status,
			a.JoinedMethod,
			a.JoinedTimestamp,
			a.Parent,
			a.Path,
			a.Email,
			a.Arn,
			fmt.Sprintf("%t", m.isManagementAccount(a.Id)),
		})
	}
	return internal.TableFile{
		Name:      globals.ORG_TREE_MODULE_NAME,
		Header:    header,
		TableCols: tableCols,
		Body:      body,
	}
}

// documents encodes every file written besides the account table.
func (m *OrgTreeModule) documents() ([]internal.DocumentFile, error) {
	inv := m.Inventory

	ouStructure, err := json.MarshalIndent(inv.Root, "", jsonIndent)
	if err != nil {
		return nil, fmt.Errorf("encoding ou_structure.json: %w", err)
	}
	accounts, err := json.MarshalIndent(inv.Accounts, "", jsonIndent)
	if err != nil {
		return nil, fmt.Errorf("encoding accounts.json: %w", err)
	}

	var dot bytes.Buffer
	if err := orgtree.WriteDOT(&dot, inv); err != nil {
		return nil, fmt.Errorf("encoding ou_structure.dot: %w", err)
	}

	roots, ous, graphAccounts := m.graphRecords()
	rootLines, err := jsonLines(roots)
	if err != nil {
		return nil, err
	}
	ouLines, err := jsonLines(ous)
	if err != nil {
		return nil, err
	}
	accountLines, err := jsonLines(graphAccounts)
	if err != nil {
		return nil, err
	}

	return []internal.DocumentFile{
		{Subdirectory: "json", Name: "ou_structure.json", Contents: ouStructure},
		{Subdirectory: "json", Name: "accounts.json", Contents: accounts},
		{Subdirectory: "graph", Name: "ou_structure.dot", Contents: dot.Bytes()},
		{Subdirectory: "graph", Name: ingestor.RootsFile, Contents: rootLines},
		{Subdirectory: "graph", Name: ingestor.OrganizationalUnitsFile, Contents: ouLines},
		{Subdirectory: "graph", Name: ingestor.AccountsFile, Contents: accountLines},
	}, nil
}

// graphRecords flattens the inventory into the node models the graph
// ingestor loads.
func (m *OrgTreeModule) graphRecords() ([]models.Root, []models.OrganizationalUnit, []models.Account) {
	inv := m.Inventory
	var orgID string
	if m.Organization != nil {
		orgID = aws.ToString(m.Organization.Id)
	}

	roots := []models.Root{{
		Id:             inv.Root.Id,
		Arn:            inv.Root.Arn,
		Name:           inv.Root.Name,
		OrganizationID: orgID,
	}}

	var ous []models.OrganizationalUnit
	var accounts []models.Account
	addAccounts := func(parentID string, members []orgtree.Account) {
		for _, a := range members {
			accounts = append(accounts, models.Account{
				Id:              a.Id,
				Arn:             a.Arn,
				Email:           a.Email,
				Name:            a.Name,
				Status:          a.Status,
				JoinedMethod:    a.JoinedMethod,
				JoinedTimestamp: a.JoinedTimestamp,
				ParentId:        parentID,
				Parent:          a.Parent,
				Path:            a.Path,
				IsOrgMgmt:       m.isManagementAccount(a.Id),
				OrganizationID:  orgID,
			})
		}
	}

	addAccounts(inv.Root.Id, inv.Root.Accounts)
	inv.Root.Walk(func(node *orgtree.OuNode, path []string) error {
		ous = append(ous, models.OrganizationalUnit{
			Id:       node.Id,
			Arn:      node.Arn,
			Name:     node.Name,
			ParentId: node.Parent,
			Path:     "/" + orgtree.RootName + "/" + strings.Join(path, "/"),
		})
		addAccounts(node.Id, node.Accounts)
		return nil
	})
	return roots, ous, accounts
}

func jsonLines[T any](records []T) ([]byte, error) {
	var buf bytes.Buffer
	for _, record := range records {
		line, err := json.Marshal(record)
		if err != nil {
			return nil, err
		}
		buf.Write(line)
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}
