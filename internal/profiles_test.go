package internal

import (
	"fmt"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/spf13/afero"
)

func compareSlice(a []string, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for idx, elem := range a {
		if elem != b[idx] {
			return false
		}
	}
	return true
}

// Case empty file.
// Case expected format.
// Case config file sections with the profile prefix.
func TestGetAllAWSProfiles(t *testing.T) {
	var tests = []struct {
		credentialsData []byte
		configData      []byte
		expectedOutput  []string
		caseName        string
	}{
		{[]byte(""), nil, []string{}, "empty file"},
		{[]byte("[default]\naws_access_key=abc\naws_secret_access_key=123\n[123]\naws_access_key=abc\naws_secret_access_key=123"), nil, []string{"default", "123"}, "expected format"},
		{[]byte("[default]\naws_access_key=abc\n"), []byte("[default]\nregion=us-east-1\n[profile mgmt]\nrole_arn=arn:aws:iam::111111111111:role/x\n"), []string{"default", "mgmt"}, "config file"},
	}
	credentialsFile := config.DefaultSharedCredentialsFilename()
	configFile := config.DefaultSharedConfigFilename()
	defer func() { ProfilesFs = afero.NewOsFs() }()

	for _, test := range tests {
		ProfilesFs = afero.NewMemMapFs()
		fmt.Printf("[*] Testing %s\n", test.caseName)
		afero.WriteFile(ProfilesFs, credentialsFile, test.credentialsData, 0755)
		if test.configData != nil {
			afero.WriteFile(ProfilesFs, configFile, test.configData, 0755)
		}
		output := GetAllAWSProfiles()
		if !compareSlice(output, test.expectedOutput) {
			t.Errorf("Test Failed: %s inputted, %v expected, received: %v", test.credentialsData, test.expectedOutput, output)
		}
	}
}

// Case empty file.
// Case special characters \r \n \t.
// Case with extra new lines at the end.
// Case expected format.
func TestGetSelectedAWSProfiles(t *testing.T) {
	var tests = []struct {
		fileData       []byte
		expectedOutput []string
		caseName       string
	}{
		{[]byte(""), []string{}, "empty file"},
		{[]byte("abcd\r\nxyz\t\n123\r\t"), []string{"abcd", "xyz", "123"}, "special characters \\r \\n \\t"},
		{[]byte("qwerty\nxyz\n456\n\n\n"), []string{"qwerty", "xyz", "456"}, "extra new lines at the end"},
		{[]byte("nmhj\nyuioy\n098"), []string{"nmhj", "yuioy", "098"}, "expected format"},
	}
	defer func() { ProfilesFs = afero.NewOsFs() }()

	for _, test := range tests {
		ProfilesFs = afero.NewMemMapFs()
		fmt.Printf("[*] Testing %s\n", test.caseName)
		afero.WriteFile(ProfilesFs, "/tmp/myfile.txt", test.fileData, 0755)
		output, err := GetSelectedAWSProfiles("/tmp/myfile.txt")
		if err != nil {
			t.Fatalf("%s: unexpected error %s", test.caseName, err)
		}
		if !compareSlice(output, test.expectedOutput) {
			t.Errorf("Test Failed: %v inputted, %v expected, received: %v", test.fileData, test.expectedOutput, output)
		}
	}
}

func TestGetSelectedAWSProfilesMissingFile(t *testing.T) {
	ProfilesFs = afero.NewMemMapFs()
	defer func() { ProfilesFs = afero.NewOsFs() }()

	if _, err := GetSelectedAWSProfiles("/tmp/does-not-exist.txt"); err == nil {
		t.Fatal("expected an error for a missing profiles list")
	}
}

func TestConfirmSelectedProfiles(t *testing.T) {
	var tests = []struct {
		answer   string
		expected bool
	}{
		{"\n", true},
		{"Y\n", true},
		{"y\n", true},
		{"n\n", false},
		{"nope\n", false},
	}
	for _, test := range tests {
		if got := ConfirmSelectedProfiles(strings.NewReader(test.answer), []string{"default"}); got != test.expected {
			t.Errorf("answer %q: got %t, expected %t", test.answer, got, test.expected)
		}
	}
}
