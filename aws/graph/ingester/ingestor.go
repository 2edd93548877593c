package ingestor

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/BishopFox/orgtree/aws/graph/ingester/schema"
	"github.com/BishopFox/orgtree/aws/graph/ingester/schema/models"
	"github.com/goccy/go-json"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

const (
	// Neo4j
	MergeNodeQueryTemplate = `CALL apoc.merge.node([$labels[0]], {id: $id}, $properties, $properties) YIELD node as obj
	CALL apoc.create.setLabels(obj, $labels) YIELD node as labeledObj
	RETURN labeledObj`

	MergeRelationQueryTemplate = `UNWIND $batch as row
	CALL apoc.merge.node([row.sourceLabel], apoc.map.fromValues([row.sourceProperty, row.sourceNodeId])) YIELD node as from
	CALL apoc.merge.node([row.targetLabel], apoc.map.fromValues([row.targetProperty, row.targetNodeId])) YIELD node as to
	CALL apoc.merge.relationship(from, row.relationshipType, {}, row.properties, to) YIELD rel
	RETURN rel`

	PostProcessMergeQueryTemplate = `MATCH (n)
	WITH n.id AS id, COLLECT(n) AS nodesToMerge
	WHERE size(nodesToMerge) > 1
	CALL apoc.refactor.mergeNodes(nodesToMerge, {properties: 'combine', mergeRels:true})
	YIELD node
	RETURN count(*);`

	database = "neo4j"
)

// Files written by the org-tree run, in the order they are ingested.
const (
	RootsFile               = "roots.jsonl"
	OrganizationalUnitsFile = "organizational_units.jsonl"
	AccountsFile            = "accounts.jsonl"
)

var ingestOrder = []struct {
	file  string
	label schema.NodeLabel
}{
	{RootsFile, schema.Root},
	{OrganizationalUnitsFile, schema.OrganizationalUnit},
	{AccountsFile, schema.Account},
}

type Neo4jConfig struct {
	Uri      string
	Username string
	Password string
}

type CloudFoxIngestor struct {
	Neo4jConfig
	Driver neo4j.DriverWithContext
}

func NewCloudFoxIngestor(server string, username string, password string) (*CloudFoxIngestor, error) {
	config := Neo4jConfig{
		Uri:      server,
		Username: username,
		Password: password,
	}
	driver, err := neo4j.NewDriverWithContext(config.Uri, neo4j.BasicAuth(config.Username, config.Password, ""))
	if err != nil {
		return nil, err
	}
	return &CloudFoxIngestor{
		Neo4jConfig: config,
		Driver:      driver,
	}, nil
}

// DecodeNodes reads one JSON object per line into models of the given label.
// Blank lines are skipped; a malformed line fails the whole file.
func DecodeNodes(r io.Reader, objectType schema.NodeLabel) ([]schema.Node, error) {
	newNode, ok := models.NodeLabelToNodeMap[objectType]
	if !ok {
		return nil, fmt.Errorf("no model for label %s", objectType)
	}

	var nodes []schema.Node
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		object := newNode()
		if err := json.Unmarshal([]byte(line), object); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNumber, err)
		}
		nodes = append(nodes, object)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return nodes, nil
}

func (i *CloudFoxIngestor) ProcessFileObjects(ctx context.Context, fs afero.Fs, path string, objectType schema.NodeLabel) error {
	file, err := fs.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	nodes, err := DecodeNodes(file, objectType)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	for _, object := range nodes {
		if err := i.InsertDBObjects(ctx, object, object.MakeRelationships(), []schema.NodeLabel{objectType}); err != nil {
			return err
		}
	}
	log.Infof("Ingested %d %s nodes from %s", len(nodes), objectType, path)
	return nil
}

func relationshipBatch(relationships []schema.Relationship) ([]map[string]interface{}, error) {
	var batch []map[string]interface{}
	for _, relationship := range relationships {
		var currentRelationship map[string]interface{}

		if relationship.SourceProperty == "" {
			relationship.SourceProperty = "id"
		}
		if relationship.TargetProperty == "" {
			relationship.TargetProperty = "id"
		}
		relationshipBytes, err := json.Marshal(relationship)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(relationshipBytes, &currentRelationship); err != nil {
			return nil, err
		}
		batch = append(batch, currentRelationship)
	}
	return batch, nil
}

func (i *CloudFoxIngestor) InsertDBObjects(ctx context.Context, object schema.Node, relationships []schema.Relationship, labels []schema.NodeLabel) error {
	if object != nil {
		nodeMap := schema.AsNeo4j(object)
		nodeQueryParams := map[string]interface{}{
			"id":         nodeMap["Id"],
			"labels":     labels,
			"properties": nodeMap,
		}
		_, err := neo4j.ExecuteQuery(ctx, i.Driver, MergeNodeQueryTemplate, nodeQueryParams, neo4j.EagerResultTransformer, neo4j.ExecuteQueryWithDatabase(database))
		if err != nil {
			log.Errorf("Error inserting node: %s -- %v", err, nodeQueryParams)
			return err
		}
	}

	if len(relationships) == 0 {
		return nil
	}
	batch, err := relationshipBatch(relationships)
	if err != nil {
		return err
	}
	_, err = neo4j.ExecuteQuery(ctx, i.Driver, MergeRelationQueryTemplate, map[string]interface{}{"batch": batch}, neo4j.EagerResultTransformer, neo4j.ExecuteQueryWithDatabase(database))
	if err != nil {
		log.Errorf("Error inserting relationships: %s -- %v", err, batch)
		return err
	}
	return nil
}

// Run ingests the JSONL files found in graphDir and merges duplicate nodes.
func (i *CloudFoxIngestor) Run(ctx context.Context, fs afero.Fs, graphDir string) error {
	log.Infof("Verifying connectivity to Neo4J at %s", i.Uri)
	if err := i.Driver.VerifyConnectivity(ctx); err != nil {
		return err
	}
	defer i.Driver.Close(ctx)

	for _, step := range ingestOrder {
		if err := i.ProcessFileObjects(ctx, fs, filepath.Join(graphDir, step.file), step.label); err != nil {
			return err
		}
	}

	log.Info("Running post processing merge query")
	_, err := neo4j.ExecuteQuery(ctx, i.Driver, PostProcessMergeQueryTemplate, nil, neo4j.EagerResultTransformer, neo4j.ExecuteQueryWithDatabase(database))
	return err
}
