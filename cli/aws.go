package cli

import (
	"fmt"
	"os"

	"github.com/BishopFox/orgtree/aws"
	"github.com/BishopFox/orgtree/globals"
	"github.com/BishopFox/orgtree/internal"
	"github.com/BishopFox/orgtree/internal/aws/orgtree"
	"github.com/aws/aws-sdk-go-v2/service/organizations"
	"github.com/aws/smithy-go/ptr"
	"github.com/fatih/color"
	"github.com/kyokomi/emoji"
	"github.com/spf13/cobra"
)

var (
	cyan             = color.New(color.FgCyan).SprintFunc()
	defaultOutputDir = ptr.ToString(internal.GetLogDirPath())

	AWSProfile      string
	AWSProfilesList string
	AWSAllProfiles  bool
	AWSProfiles     []string
	AWSConfirm      bool

	AWSOutputDirectory string
	AWSWrapTable       bool
	AWSMFAToken        string

	Goroutines int
	Verbosity  int

	AWSCommands = &cobra.Command{
		Use:   "aws",
		Short: "See \"Available Commands\" for AWS Modules",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}

	OrgTreeMaxDepth int
	Neo4jURI        string
	Neo4jUser       string
	Neo4jPassword   string
	OrgTreeCommand  = &cobra.Command{
		Use:     "org-tree",
		Aliases: []string{"ou-tree", "organization-tree"},
		Short:   "Map the organization's OU hierarchy and the accounts in it",
		Long: "\nUse case examples:\n" +
			os.Args[0] + " aws org-tree --profile mgmt_account\n" +
			os.Args[0] + " aws org-tree --profile mgmt_account -g 8 --neo4j-uri neo4j://localhost:7687",
		PreRun: awsPreRun,
		Run:    runOrgTreeCommand,
	}
)

func initAWSProfiles() {
	logger := internal.NewLogger()
	// Ensure only one profile setting is chosen
	if AWSProfile != "" && AWSProfilesList != "" || AWSProfile != "" && AWSAllProfiles || AWSProfilesList != "" && AWSAllProfiles {
		logger.FatalM("Error specifying AWS profiles. Choose only one of -p/--profile, -a/--all-profiles, -l/--profiles-list", "aws")
	} else if AWSProfile != "" {
		AWSProfiles = append(AWSProfiles, AWSProfile)
	} else if AWSProfilesList != "" {
		profiles, err := internal.GetSelectedAWSProfiles(AWSProfilesList)
		if err != nil {
			logger.FatalM(err.Error(), "aws")
		}
		AWSProfiles = profiles
	} else if AWSAllProfiles {
		AWSProfiles = internal.GetAllAWSProfiles()
		if !AWSConfirm && !internal.ConfirmFromStdin(AWSProfiles) {
			os.Exit(1)
		}
	} else {
		AWSProfiles = append(AWSProfiles, "")
	}
}

func profileLabel(profile string) string {
	if profile == "" {
		return "default credentials"
	}
	return profile
}

func banner(version string) string {
	return emoji.Sprintf(":fox:cloudfox v%s :fox:", version)
}

func awsPreRun(cmd *cobra.Command, args []string) {
	ctx := cmd.Context()
	for _, profile := range AWSProfiles {
		cfg, err := internal.AWSConfigFileLoader(ctx, profile, AWSMFAToken)
		if err != nil {
			continue
		}
		caller, err := internal.AWSWhoami(ctx, cfg)
		if err != nil {
			continue
		}
		fmt.Printf("[%s][%s] AWS Caller Identity: %s\n", cyan(banner(cmd.Root().Version)), cyan(profile), ptr.ToString(caller.Arn))
	}
}

func runOrgTreeCommand(cmd *cobra.Command, args []string) {
	ctx := cmd.Context()
	logger := internal.NewLogger()
	failed := false

	for _, profile := range AWSProfiles {
		logger.InfoM(fmt.Sprintf("Mapping the organization with profile %q", profileLabel(profile)), globals.ORG_TREE_MODULE_NAME)
		cfg, err := internal.AWSConfigFileLoader(ctx, profile, AWSMFAToken)
		if err != nil {
			logger.ErrorM(fmt.Sprintf("Could not load AWS config for profile %q: %s", profile, err), globals.ORG_TREE_MODULE_NAME)
			failed = true
			continue
		}
		caller, err := internal.AWSWhoami(ctx, cfg)
		if err != nil {
			logger.ErrorM(fmt.Sprintf("Could not get caller identity for profile %q: %s", profile, err), globals.ORG_TREE_MODULE_NAME)
			failed = true
			continue
		}

		m := aws.OrgTreeModule{
			OrganizationsClient: organizations.NewFromConfig(cfg),
			Caller:              *caller,
			AWSProfile:          profile,
			Goroutines:          Goroutines,
			MaxDepth:            OrgTreeMaxDepth,
			WrapTable:           AWSWrapTable,
			Neo4jURI:            Neo4jURI,
			Neo4jUser:           Neo4jUser,
			Neo4jPassword:       Neo4jPassword,
		}
		if err := m.PrintOrgTree(ctx, AWSOutputDirectory, Verbosity); err != nil {
			logger.ErrorM(err.Error(), globals.ORG_TREE_MODULE_NAME)
			failed = true
			continue
		}
		logger.SuccessM(m.Summary(), globals.ORG_TREE_MODULE_NAME)
	}

	if failed {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initAWSProfiles)

	// org-tree module flags
	OrgTreeCommand.Flags().IntVar(&OrgTreeMaxDepth, "max-depth", orgtree.DefaultMaxDepth, "Maximum OU nesting depth to follow before giving up")
	OrgTreeCommand.Flags().StringVar(&Neo4jURI, "neo4j-uri", "", "Ingest the results into the Neo4j server at this URI")
	OrgTreeCommand.Flags().StringVar(&Neo4jUser, "neo4j-user", "neo4j", "Neo4j username")
	OrgTreeCommand.Flags().StringVar(&Neo4jPassword, "neo4j-password", "", "Neo4j password")

	// Global flags for the AWS modules
	AWSCommands.PersistentFlags().StringVarP(&AWSProfile, "profile", "p", "", "AWS CLI Profile Name")
	AWSCommands.PersistentFlags().StringVarP(&AWSProfilesList, "profiles-list", "l", "", "File containing a AWS CLI profile names separated by newlines")
	AWSCommands.PersistentFlags().BoolVarP(&AWSAllProfiles, "all-profiles", "a", false, "Use all AWS CLI profiles in AWS credentials file")
	AWSCommands.PersistentFlags().BoolVarP(&AWSConfirm, "yes", "y", false, "Non-interactive mode (like apt/yum)")
	AWSCommands.PersistentFlags().IntVarP(&Verbosity, "verbosity", "v", 2, "1 = Print control messages only\n2 = Print control messages, module output and the OU tree\n")
	AWSCommands.PersistentFlags().StringVar(&AWSOutputDirectory, "outdir", defaultOutputDir, "Output Directory ")
	AWSCommands.PersistentFlags().IntVarP(&Goroutines, "max-goroutines", "g", 1, "Maximum number of concurrent requests to the Organizations API")
	AWSCommands.PersistentFlags().BoolVarP(&AWSWrapTable, "wrap", "w", false, "Wrap table to fit in terminal (complicates grepping)")
	AWSCommands.PersistentFlags().StringVar(&AWSMFAToken, "mfa-token", "", "MFA Token")

	AWSCommands.AddCommand(
		OrgTreeCommand,
	)
}
