package internal

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/fatih/color"
	"github.com/kyokomi/emoji"
	"github.com/spf13/afero"
)

// ProfilesFs is where AWS credential and profile list files are read from.
var ProfilesFs = afero.NewOsFs()

// scanProfileNames collects the section names of an AWS credentials or config
// file, dropping the "profile " prefix config files use.
func scanProfileNames(r io.Reader, into []string) []string {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		text := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(text, "[") || !strings.HasSuffix(text, "]") {
			continue
		}
		text = strings.TrimSuffix(strings.TrimPrefix(text, "["), "]")
		text = strings.TrimSpace(strings.TrimPrefix(text, "profile "))
		if text != "" && !slices.Contains(into, text) {
			into = append(into, text)
		}
	}
	return into
}

// GetAllAWSProfiles lists every profile in the default shared credentials and
// config files.
func GetAllAWSProfiles() []string {
	var AWSProfiles []string
	for _, path := range []string{config.DefaultSharedCredentialsFilename(), config.DefaultSharedConfigFilename()} {
		file, err := ProfilesFs.Open(path)
		if err != nil {
			TxtLog.Printf("[-] Could not open %s: %s", path, err)
			continue
		}
		AWSProfiles = scanProfileNames(file, AWSProfiles)
		file.Close()
	}
	return AWSProfiles
}

// ConfirmSelectedProfiles asks on in whether to run against AWSProfiles.
// An empty answer counts as yes.
func ConfirmSelectedProfiles(in io.Reader, AWSProfiles []string) bool {
	cyan := color.New(color.FgCyan).SprintFunc()
	reader := bufio.NewReader(in)
	fmt.Printf("[%s] Identified profiles:\n\n", cyan(emoji.Sprintf(":fox:cloudfox :fox:")))
	for _, profile := range AWSProfiles {
		fmt.Printf("\t* %s\n", profile)
	}
	fmt.Printf("\n[%s] Are you sure you'd like to run this command against the [%d] listed profile(s)? (Y\\n): ", cyan(emoji.Sprintf(":fox:cloudfox :fox:")), len(AWSProfiles))
	text, _ := reader.ReadString('\n')
	switch strings.TrimSpace(text) {
	case "", "Y", "y":
		return true
	}
	return false
}

// GetSelectedAWSProfiles reads profile names from a file, one per line.
func GetSelectedAWSProfiles(AWSProfilesListPath string) ([]string, error) {
	AWSProfilesListFile, err := ProfilesFs.Open(AWSProfilesListPath)
	if err != nil {
		TxtLog.Printf("[-] Could not open given file %s: %s", AWSProfilesListPath, err)
		return nil, fmt.Errorf("loading profiles from %s: %w", AWSProfilesListPath, err)
	}
	defer AWSProfilesListFile.Close()

	var AWSProfiles []string
	scanner := bufio.NewScanner(AWSProfilesListFile)
	for scanner.Scan() {
		profile := strings.TrimSpace(scanner.Text())
		if len(profile) != 0 {
			AWSProfiles = append(AWSProfiles, profile)
		}
	}
	return AWSProfiles, scanner.Err()
}

// ConfirmFromStdin is ConfirmSelectedProfiles reading the terminal.
func ConfirmFromStdin(AWSProfiles []string) bool {
	return ConfirmSelectedProfiles(os.Stdin, AWSProfiles)
}
