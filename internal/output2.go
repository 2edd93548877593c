package internal

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path"
	"regexp"
	"strings"

	"github.com/aquasecurity/table"
	"github.com/fatih/color"
	"github.com/spf13/afero"
)

// Used for file system mocking with Afero library. Set:
// fileSystem = afero.NewOsFs() if not unit testing (code will use real file system) OR
// fileSystem = afero.NewMemMapFs() for a mocked file system (when unit testing)
var fileSystem = afero.NewOsFs()

var cyan = color.New(color.FgCyan).SprintFunc()

var ansiRegExp = regexp.MustCompile(`\x1b\[[0-9;]*m`)

type OutputClient struct {
	Verbosity        int
	CallingModule    string
	PrefixIdentifier string
	Table            TableClient
	Documents        DocumentClient
}

type TableClient struct {
	Wrap          bool
	DirectoryName string
}

type TableFile struct {
	Name      string
	TableCols []string
	Header    []string
	Body      [][]string
}

// DocumentClient writes pre-rendered files such as JSON or DOT documents.
// Each document lands in <DirectoryName>/<Subdirectory>/<Name>.
type DocumentClient struct {
	DirectoryName string
}

type DocumentFile struct {
	Subdirectory string
	Name         string
	Contents     []byte
}

func removeColorCodesFromSlice(input []string) []string {
	noColorSlice := make([]string, len(input))
	for i, str := range input {
		noColorSlice[i] = ansiRegExp.ReplaceAllString(str, "")
	}
	return noColorSlice
}

func removeColorCodesFromNestedSlice(input [][]string) [][]string {
	noColorNestedSlice := make([][]string, len(input))
	for i, strSlice := range input {
		noColorNestedSlice[i] = removeColorCodesFromSlice(strSlice)
	}
	return noColorNestedSlice
}

// WriteFullOutput prints tables according to verbosity and writes tables,
// CSVs and documents to disk. It returns the paths written.
func (o *OutputClient) WriteFullOutput(tables []TableFile, documents []DocumentFile) ([]string, error) {
	if o.Verbosity >= 2 {
		o.Table.printTablesToScreen(tables)
	}

	var outputPaths []string
	tablePaths, err := o.Table.writeTableFiles(tables)
	if err != nil {
		return outputPaths, err
	}
	outputPaths = append(outputPaths, tablePaths...)

	csvPaths, err := o.Table.writeCSVFiles(tables)
	if err != nil {
		return outputPaths, err
	}
	outputPaths = append(outputPaths, csvPaths...)

	documentPaths, err := o.Documents.writeDocuments(documents)
	if err != nil {
		return outputPaths, err
	}
	outputPaths = append(outputPaths, documentPaths...)

	for _, outputPath := range outputPaths {
		fmt.Printf("[%s][%s] Output written to %s\n", cyan(o.CallingModule), cyan(o.PrefixIdentifier), outputPath)
	}
	return outputPaths, nil
}

// createOutputFile opens directory/name for writing, creating the directory
// when needed.
func createOutputFile(directory string, name string) (afero.File, string, error) {
	if name == "" {
		return nil, "", fmt.Errorf("error creating output file in %s: no file name was specified", directory)
	}
	if _, err := fileSystem.Stat(directory); os.IsNotExist(err) {
		if err := fileSystem.MkdirAll(directory, 0700); err != nil {
			return nil, "", err
		}
	}
	fullPath := path.Join(directory, name)
	filePointer, err := fileSystem.OpenFile(fullPath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return nil, "", fmt.Errorf("error creating output file: %w", err)
	}
	return filePointer, fullPath, nil
}

func (b *TableClient) baseDirectory() string {
	if b.DirectoryName == "" {
		return "."
	}
	return b.DirectoryName
}

func (b *TableClient) renderTable(w io.Writer, tf TableFile, screen bool) {
	body, header := adjustBodyForTable(tf.TableCols, tf.Header, tf.Body)
	standardColumnWidth := 1000
	t := table.New(w)

	if !b.Wrap {
		t.SetColumnMaxWidth(standardColumnWidth)
	}

	t.SetHeaders(header...)
	if screen {
		t.SetHeaderStyle(table.StyleBold)
		t.SetLineStyle(table.StyleCyan)
	} else {
		body = removeColorCodesFromNestedSlice(body)
	}
	t.AddRows(body...)
	t.SetRowLines(false)
	t.SetDividers(table.UnicodeRoundedDividers)
	t.SetAlignment(table.AlignLeft)
	t.Render()
}

func (b *TableClient) printTablesToScreen(tableFiles []TableFile) {
	for _, tf := range tableFiles {
		b.renderTable(os.Stdout, tf, true)
	}
}

func (b *TableClient) writeTableFiles(files []TableFile) ([]string, error) {
	var fullFilePaths []string
	for _, file := range files {
		filePointer, fullPath, err := createOutputFile(path.Join(b.baseDirectory(), "table"), fmt.Sprintf("%s.txt", file.Name))
		if err != nil {
			return fullFilePaths, err
		}
		b.renderTable(filePointer, file, false)
		if err := filePointer.Close(); err != nil {
			return fullFilePaths, err
		}
		fullFilePaths = append(fullFilePaths, fullPath)
	}
	return fullFilePaths, nil
}

func (b *TableClient) writeCSVFiles(files []TableFile) ([]string, error) {
	var fullFilePaths []string
	for _, file := range files {
		filePointer, fullPath, err := createOutputFile(path.Join(b.baseDirectory(), "csv"), fmt.Sprintf("%s.csv", file.Name))
		if err != nil {
			return fullFilePaths, err
		}
		csvWriter := csv.NewWriter(filePointer)
		csvWriter.Write(file.Header)
		for _, row := range file.Body {
			csvWriter.Write(removeColorCodesFromSlice(row))
		}
		csvWriter.Flush()
		if err := csvWriter.Error(); err != nil {
			filePointer.Close()
			return fullFilePaths, err
		}
		if err := filePointer.Close(); err != nil {
			return fullFilePaths, err
		}
		fullFilePaths = append(fullFilePaths, fullPath)
	}
	return fullFilePaths, nil
}

func (d *DocumentClient) writeDocuments(documents []DocumentFile) ([]string, error) {
	var fullFilePaths []string
	base := d.DirectoryName
	if base == "" {
		base = "."
	}
	for _, doc := range documents {
		filePointer, fullPath, err := createOutputFile(path.Join(base, doc.Subdirectory), doc.Name)
		if err != nil {
			return fullFilePaths, err
		}
		if _, err := filePointer.Write(doc.Contents); err != nil {
			filePointer.Close()
			return fullFilePaths, fmt.Errorf("error writing %s: %w", fullPath, err)
		}
		if err := filePointer.Close(); err != nil {
			return fullFilePaths, err
		}
		fullFilePaths = append(fullFilePaths, fullPath)
	}
	return fullFilePaths, nil
}

func adjustBodyForTable(tableHeaders []string, fullHeaders []string, fullBody [][]string) ([][]string, []string) {
	if len(tableHeaders) == 0 {
		return fullBody, fullHeaders
	}

	columnIndices := make([]int, 0)
	selectedHeaders := make([]string, 0)

	for _, tableHeader := range tableHeaders {
		for j, fullHeader := range fullHeaders {
			if strings.EqualFold(tableHeader, fullHeader) {
				columnIndices = append(columnIndices, j)
				selectedHeaders = append(selectedHeaders, fullHeader)
				break
			}
		}
	}

	adjustedBody := make([][]string, len(fullBody))
	for i, row := range fullBody {
		newRow := make([]string, len(columnIndices))
		for k, index := range columnIndices {
			newRow[k] = row[index]
		}
		adjustedBody[i] = newRow
	}

	return adjustedBody, selectedHeaders
}

// FileSystem is the file system output is written to.
func FileSystem() afero.Fs {
	return fileSystem
}

func MockFileSystem(switcher bool) afero.Fs {
	if switcher {
		fileSystem = afero.NewMemMapFs()
	} else {
		fileSystem = afero.NewOsFs()
	}
	return fileSystem
}
