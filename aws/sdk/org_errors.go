package sdk

import (
	"errors"
	"fmt"

	orgTypes "github.com/aws/aws-sdk-go-v2/service/organizations/types"
	"github.com/aws/smithy-go"
)

type OrgErrorKind string

const (
	KindAccessDenied       OrgErrorKind = "AccessDenied"
	KindNotInUse           OrgErrorKind = "NotInUse"
	KindInvalidInput       OrgErrorKind = "InvalidInput"
	KindNotFound           OrgErrorKind = "NotFound"
	KindServiceUnavailable OrgErrorKind = "ServiceUnavailable"
	KindThrottled          OrgErrorKind = "Throttled"
	KindUnknown            OrgErrorKind = "Unknown"
)

var errEmptyResponse = errors.New("empty response")

// OrgError records which organizations operation failed and for which
// identifier.
type OrgError struct {
	Op   string
	ID   string
	Kind OrgErrorKind
	Err  error
}

func NewOrgError(op string, id string, err error) *OrgError {
	return &OrgError{
		Op:   op,
		ID:   id,
		Kind: ClassifyOrgError(err),
		Err:  err,
	}
}

func (e *OrgError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("organizations %s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("organizations %s %s: %s: %v", e.Op, e.ID, e.Kind, e.Err)
}

func (e *OrgError) Unwrap() error {
	return e.Err
}

// ClassifyOrgError maps an organizations API error onto an OrgErrorKind.
func ClassifyOrgError(err error) OrgErrorKind {
	var (
		accessDenied     *orgTypes.AccessDeniedException
		accessDeniedDep  *orgTypes.AccessDeniedForDependencyException
		notInUse         *orgTypes.AWSOrganizationsNotInUseException
		invalidInput     *orgTypes.InvalidInputException
		ouNotFound       *orgTypes.OrganizationalUnitNotFoundException
		accountNotFound  *orgTypes.AccountNotFoundException
		childNotFound    *orgTypes.ChildNotFoundException
		parentNotFound   *orgTypes.ParentNotFoundException
		rootNotFound     *orgTypes.RootNotFoundException
		serviceException *orgTypes.ServiceException
		tooManyRequests  *orgTypes.TooManyRequestsException
		existingOrgErr   *OrgError
		apiErr           smithy.APIError
	)

	switch {
	case err == nil:
		return ""
	case errors.As(err, &existingOrgErr):
		return existingOrgErr.Kind
	case errors.As(err, &accessDenied), errors.As(err, &accessDeniedDep):
		return KindAccessDenied
	case errors.As(err, &notInUse):
		return KindNotInUse
	case errors.As(err, &invalidInput):
		return KindInvalidInput
	case errors.As(err, &ouNotFound), errors.As(err, &accountNotFound), errors.As(err, &childNotFound),
		errors.As(err, &parentNotFound), errors.As(err, &rootNotFound):
		return KindNotFound
	case errors.As(err, &serviceException):
		return KindServiceUnavailable
	case errors.As(err, &tooManyRequests):
		return KindThrottled
	case errors.As(err, &apiErr):
		return classifyErrorCode(apiErr.ErrorCode())
	}
	return KindUnknown
}

func classifyErrorCode(code string) OrgErrorKind {
	switch code {
	case "AccessDeniedException", "AccessDeniedForDependencyException":
		return KindAccessDenied
	case "AWSOrganizationsNotInUseException":
		return KindNotInUse
	case "InvalidInputException", "ValidationException":
		return KindInvalidInput
	case "OrganizationalUnitNotFoundException", "AccountNotFoundException", "ChildNotFoundException",
		"ParentNotFoundException", "RootNotFoundException":
		return KindNotFound
	case "ServiceException", "ServiceUnavailableException", "InternalFailure":
		return KindServiceUnavailable
	case "TooManyRequestsException", "ThrottlingException", "Throttling", "RequestLimitExceeded":
		return KindThrottled
	}
	return KindUnknown
}

// OrgErrorKindOf returns the kind of the first *OrgError in err's chain, or
// KindUnknown when there is none.
func OrgErrorKindOf(err error) OrgErrorKind {
	var orgErr *OrgError
	if errors.As(err, &orgErr) {
		return orgErr.Kind
	}
	return KindUnknown
}
