package internal

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

func TestBuildAWSPath(t *testing.T) {
	var tests = []struct {
		caller   sts.GetCallerIdentityOutput
		expected string
	}{
		{sts.GetCallerIdentityOutput{Account: aws.String("111111111111"), UserId: aws.String("AIDAEXAMPLE")}, "111111111111-AIDAEXAMPLE"},
		{sts.GetCallerIdentityOutput{Account: aws.String("111111111111"), UserId: aws.String("AROAEXAMPLE:session|name")}, "111111111111-AROAEXAMPLE_session_name"},
		{sts.GetCallerIdentityOutput{}, "-"},
	}
	for _, test := range tests {
		if got := BuildAWSPath(test.caller); got != test.expected {
			t.Errorf("BuildAWSPath(%s) = %s, expected %s", aws.ToString(test.caller.UserId), got, test.expected)
		}
	}
}
