package errors

import "fmt"

// Error code constants.

// Document error codes.
const (
	CodeMetadataParse = "METADATA_PARSE_FAILED"
	CodePolicyParse   = "POLICY_PARSE_FAILED"
)

// Environment error codes.
const (
	CodeEnumerateFailed = "ENUMERATE_FAILED"
	CodeConfigInvalid   = "CONFIG_INVALID"
)

// Runner error codes.
const (
	CodeCheckUnknown = "CHECK_UNKNOWN"
	CodeCheckAborted = "CHECK_ABORTED"
)

// Convenience constructors using predefined codes.

// ErrMetadataParsef reports a metadata document that could not be parsed.
func ErrMetadataParsef(path string, err error) *GuardError {
	return Wrap(joinSentinel(ErrMalformedDocument, err), CodeMetadataParse, "metadata document does not parse").WithPath(path)
}

// ErrPolicyParsef reports a policy data document that could not be parsed.
func ErrPolicyParsef(path string, err error) *GuardError {
	return Wrap(joinSentinel(ErrMalformedDocument, err), CodePolicyParse, "policy document does not parse").WithPath(path)
}

// ErrEnumeratef reports a version-control listing that could not be produced.
func ErrEnumeratef(root string, err error) *GuardError {
	return Wrap(err, CodeEnumerateFailed, "file listing failed").WithPath(root)
}

// ErrCheckAbortedf reports a check that stopped abnormally, such as by panicking.
func ErrCheckAbortedf(cause any) *GuardError {
	return Wrap(fmt.Errorf("%v", cause), CodeCheckAborted, "check aborted")
}

// ErrCheckUnknownf reports a check name missing from the registry.
func ErrCheckUnknownf(name string) *GuardError {
	return Wrap(ErrUnknownCheck, CodeCheckUnknown, "no check named "+name)
}

func joinSentinel(sentinel, err error) error {
	if err == nil {
		return sentinel
	}
	return &sentinelError{sentinel: sentinel, err: err}
}

// sentinelError lets errors.Is match both the sentinel and the cause.
type sentinelError struct {
	sentinel error
	err      error
}

func (e *sentinelError) Error() string   { return e.err.Error() }
func (e *sentinelError) Unwrap() []error { return []error{e.sentinel, e.err} }
