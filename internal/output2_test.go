package internal

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
)

func TestWriteFullOutput(t *testing.T) {
	fs := MockFileSystem(true)
	defer MockFileSystem(false)

	outputFileHeader := []string{"Service", "Status", "Region"}
	outputFileBody := [][]string{
		{"IAM", "Active", "global"},
		{"EC2", "\x1b[31mNot Active\x1b[0m", "us-east-1"},
	}

	o := OutputClient{
		Verbosity:        1,
		CallingModule:    "testModule",
		PrefixIdentifier: "customIdentifier",
		Table: TableClient{
			Wrap:          false,
			DirectoryName: "baseOutputDirectory",
		},
		Documents: DocumentClient{
			DirectoryName: "baseOutputDirectory",
		},
	}

	paths, err := o.WriteFullOutput(
		[]TableFile{{Name: "services", Header: outputFileHeader, TableCols: []string{"service", "status"}, Body: outputFileBody}},
		[]DocumentFile{{Subdirectory: "json", Name: "services.json", Contents: []byte(`{"IAM":"Active"}`)}},
	)
	if err != nil {
		t.Fatalf("WriteFullOutput failed: %s", err)
	}
	expectedPaths := []string{
		filepath.Join("baseOutputDirectory", "table", "services.txt"),
		filepath.Join("baseOutputDirectory", "csv", "services.csv"),
		filepath.Join("baseOutputDirectory", "json", "services.json"),
	}
	if !compareSlice(paths, expectedPaths) {
		t.Fatalf("got paths %v, expected %v", paths, expectedPaths)
	}

	tableFile, err := afero.ReadFile(fs, expectedPaths[0])
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(tableFile), "Region") || !strings.Contains(string(tableFile), "Not Active") {
		t.Fatalf("table file should hold the selected columns only:\n%s", tableFile)
	}

	csvFile, err := afero.ReadFile(fs, expectedPaths[1])
	if err != nil {
		t.Fatal(err)
	}
	expectedCSV := "Service,Status,Region\nIAM,Active,global\nEC2,Not Active,us-east-1\n"
	if string(csvFile) != expectedCSV {
		t.Fatalf("unexpected CSV:\n%q", csvFile)
	}

	jsonFile, err := afero.ReadFile(fs, expectedPaths[2])
	if err != nil || string(jsonFile) != `{"IAM":"Active"}` {
		t.Fatalf("unexpected document contents %q (%v)", jsonFile, err)
	}
}

func TestWriteFullOutputRejectsUnnamedDocument(t *testing.T) {
	MockFileSystem(true)
	defer MockFileSystem(false)

	o := OutputClient{Documents: DocumentClient{DirectoryName: "out"}}
	if _, err := o.WriteFullOutput(nil, []DocumentFile{{Subdirectory: "json"}}); err == nil {
		t.Fatal("expected an error for a document without a name")
	}
}

func TestAdjustBodyForTable(t *testing.T) {
	header := []string{"Name", "ID", "Path"}
	body := [][]string{{"prod-a", "222222222222", "/Root/Engineering/Prod"}}

	adjusted, selected := adjustBodyForTable([]string{"path", "name"}, header, body)
	if !compareSlice(selected, []string{"Path", "Name"}) {
		t.Fatalf("unexpected headers %v", selected)
	}
	if !compareSlice(adjusted[0], []string{"/Root/Engineering/Prod", "prod-a"}) {
		t.Fatalf("unexpected row %v", adjusted[0])
	}

	adjusted, selected = adjustBodyForTable(nil, header, body)
	if !compareSlice(selected, header) || !compareSlice(adjusted[0], body[0]) {
		t.Fatal("no selection should keep every column")
	}
}
