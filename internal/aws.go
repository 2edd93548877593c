package internal

import (
	"context"
	"fmt"
	"regexp"

	"github.com/BishopFox/orgtree/globals"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials/stscreds"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

var bannedPathChars = regexp.MustCompile(`[<>:"'|?*]`)

// AWSConfigFileLoader loads the shared config for AWSProfile. Organizations is
// a global service, so us-east-1 is used when the profile has no region.
func AWSConfigFileLoader(ctx context.Context, AWSProfile string, AWSMFAToken string) (aws.Config, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithDefaultRegion("us-east-1"),
		config.WithAppID(globals.CLOUDFOX_USER_AGENT),
		config.WithRetryer(func() aws.Retryer {
			return retry.AddWithMaxAttempts(retry.NewStandard(), 3)
		}),
	}
	if AWSProfile != "" {
		opts = append(opts, config.WithSharedConfigProfile(AWSProfile))
	}
	if AWSMFAToken != "" {
		opts = append(opts, config.WithAssumeRoleCredentialOptions(func(options *stscreds.AssumeRoleOptions) {
			options.TokenProvider = func() (string, error) {
				return AWSMFAToken, nil
			}
		}))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		TxtLog.Printf("Could not load config for profile %q: %s", AWSProfile, err)
		return cfg, err
	}

	_, err = cfg.Credentials.Retrieve(ctx)
	if err != nil {
		TxtLog.Printf("Could not retrieve credentials for profile %q: %s", AWSProfile, err)
		return cfg, fmt.Errorf("retrieving credentials: %w", err)
	}
	return cfg, nil
}

// AWSWhoami is the equivalent of "aws sts get-caller-identity".
func AWSWhoami(ctx context.Context, cfg aws.Config) (*sts.GetCallerIdentityOutput, error) {
	STSService := sts.NewFromConfig(cfg)
	CallerIdentity, err := STSService.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		TxtLog.Printf("Could not get caller's identity: %s", err)
		return nil, err
	}
	return CallerIdentity, nil
}

func removeBadPathChars(receivedPath *string) string {
	return bannedPathChars.ReplaceAllString(aws.ToString(receivedPath), "_")
}

// BuildAWSPath names the output directory of a caller when no profile name
// is available.
func BuildAWSPath(Caller sts.GetCallerIdentityOutput) string {
	var callerAccount = removeBadPathChars(Caller.Account)
	var callerUserID = removeBadPathChars(Caller.UserId)

	return fmt.Sprintf("%s-%s", callerAccount, callerUserID)
}
