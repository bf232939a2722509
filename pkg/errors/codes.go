package errors

import (
	"net/http"
	"strings"
)

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common error codes shared by every module.
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeUnauthorized       ErrorCode = "COMMON_003"
	ErrCodeForbidden          ErrorCode = "COMMON_004"
	ErrCodeNotFound           ErrorCode = "COMMON_005"
	ErrCodeConflict           ErrorCode = "COMMON_006"
	ErrCodeTooManyRequests    ErrorCode = "COMMON_007"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_008"
	ErrCodeTimeout            ErrorCode = "COMMON_009"
	ErrCodeValidation         ErrorCode = "COMMON_010"
	ErrCodeSerialization      ErrorCode = "COMMON_011"
	ErrCodeDatabaseError      ErrorCode = "COMMON_012"
	ErrCodeCacheError         ErrorCode = "COMMON_013"
	ErrCodeExternalService    ErrorCode = "COMMON_014"
	ErrCodeNotImplemented     ErrorCode = "COMMON_015"
)

// Short aliases used pervasively at call sites.
const (
	CodeInternal     = ErrCodeInternal
	CodeInvalidParam = ErrCodeBadRequest
	CodeUnauthorized = ErrCodeUnauthorized
	CodeForbidden    = ErrCodeForbidden
	CodeNotFound     = ErrCodeNotFound
	CodeConflict     = ErrCodeConflict
	CodeRateLimit    = ErrCodeTooManyRequests
	CodeUnknown      = ErrorCode("UNKNOWN")
	CodeOK           = ErrorCode("OK")
)

// Configuration error codes.
const (
	ErrCodeConfigInvalid ErrorCode = "CFG_001"
)

// Person module error codes.
const (
	ErrCodePersonNotFound      ErrorCode = "PER_001"
	ErrCodePersonInvalid       ErrorCode = "PER_002"
	ErrCodePersonAlreadyExists ErrorCode = "PER_003"
)

// Reconciliation module error codes.
const (
	ErrCodeReconcileInProgress ErrorCode = "REC_001"
	ErrCodeReconcilePartial    ErrorCode = "REC_002"
	ErrCodeSnapshotUnavailable ErrorCode = "REC_003"
)

// Duplicate detection and merge error codes.
const (
	ErrCodeDuplicateScanFailed    ErrorCode = "DUP_001"
	ErrCodeDuplicateScanCancelled ErrorCode = "DUP_002"
	ErrCodeMergeSelfTarget        ErrorCode = "MRG_001"
	ErrCodeMergeSelfReference     ErrorCode = "MRG_002"
	ErrCodeMergeInProgress        ErrorCode = "MRG_003"
	ErrCodeMergeCommitFailed      ErrorCode = "MRG_004"
)

// Subfamily module error codes.
const (
	ErrCodeSubfamilyNotFound ErrorCode = "SUB_001"
	ErrCodeSubfamilyExists   ErrorCode = "SUB_002"
)

// Kinship module error codes.
const (
	ErrCodeKinshipUnknownPerson ErrorCode = "KIN_001"
)

// ErrorCodeHTTPStatus maps ErrorCodes to HTTP status codes.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeUnauthorized:       http.StatusUnauthorized,
	ErrCodeForbidden:          http.StatusForbidden,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeTooManyRequests:    http.StatusTooManyRequests,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeValidation:         http.StatusUnprocessableEntity,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeDatabaseError:      http.StatusInternalServerError,
	ErrCodeCacheError:         http.StatusInternalServerError,
	ErrCodeExternalService:    http.StatusInternalServerError,
	ErrCodeNotImplemented:     http.StatusNotImplemented,

	ErrCodeConfigInvalid: http.StatusInternalServerError,

	ErrCodePersonNotFound:      http.StatusNotFound,
	ErrCodePersonInvalid:       http.StatusBadRequest,
	ErrCodePersonAlreadyExists: http.StatusConflict,

	ErrCodeReconcileInProgress: http.StatusConflict,
	ErrCodeReconcilePartial:    http.StatusInternalServerError,
	ErrCodeSnapshotUnavailable: http.StatusServiceUnavailable,

	ErrCodeDuplicateScanFailed:    http.StatusInternalServerError,
	ErrCodeDuplicateScanCancelled: http.StatusRequestTimeout,
	ErrCodeMergeSelfTarget:        http.StatusBadRequest,
	ErrCodeMergeSelfReference:     http.StatusUnprocessableEntity,
	ErrCodeMergeInProgress:        http.StatusConflict,
	ErrCodeMergeCommitFailed:      http.StatusInternalServerError,

	ErrCodeSubfamilyNotFound: http.StatusNotFound,
	ErrCodeSubfamilyExists:   http.StatusConflict,

	ErrCodeKinshipUnknownPerson: http.StatusNotFound,
}

// ErrorCodeMessage maps ErrorCodes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:           "internal server error",
	ErrCodeBadRequest:         "bad request",
	ErrCodeUnauthorized:       "unauthorized",
	ErrCodeForbidden:          "forbidden",
	ErrCodeNotFound:           "resource not found",
	ErrCodeConflict:           "resource conflict",
	ErrCodeTooManyRequests:    "too many requests",
	ErrCodeServiceUnavailable: "service unavailable",
	ErrCodeTimeout:            "request timeout",
	ErrCodeValidation:         "validation failed",
	ErrCodeSerialization:      "serialization failed",
	ErrCodeDatabaseError:      "database error",
	ErrCodeCacheError:         "cache error",
	ErrCodeExternalService:    "external service error",
	ErrCodeNotImplemented:     "not implemented",

	ErrCodeConfigInvalid: "invalid configuration",

	ErrCodePersonNotFound:      "person not found",
	ErrCodePersonInvalid:       "invalid person record",
	ErrCodePersonAlreadyExists: "person already exists",

	ErrCodeReconcileInProgress: "a reconciliation pass is already running",
	ErrCodeReconcilePartial:    "reconciliation completed with write failures",
	ErrCodeSnapshotUnavailable: "graph snapshot unavailable",

	ErrCodeDuplicateScanFailed:    "duplicate scan failed",
	ErrCodeDuplicateScanCancelled: "duplicate scan cancelled",
	ErrCodeMergeSelfTarget:        "cannot merge a person with itself",
	ErrCodeMergeSelfReference:     "merge would make a person their own relative",
	ErrCodeMergeInProgress:        "a merge is already running",
	ErrCodeMergeCommitFailed:      "failed to commit merge write-set",

	ErrCodeSubfamilyNotFound: "subfamily not found",
	ErrCodeSubfamilyExists:   "subfamily already exists",

	ErrCodeKinshipUnknownPerson: "person not present in snapshot",
}

// HTTPStatusForCode returns the HTTP status code for an ErrorCode.
func HTTPStatusForCode(code ErrorCode) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DefaultMessageForCode returns the default message for an ErrorCode.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := ErrorCodeMessage[code]; ok {
		return msg
	}
	return "unknown error"
}

// IsClientError returns true if the ErrorCode corresponds to a 4xx HTTP status.
func IsClientError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 400 && status < 500
}

// IsServerError returns true if the ErrorCode corresponds to a 5xx HTTP status.
func IsServerError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 500 && status < 600
}

// ModuleForCode returns the module prefix of an ErrorCode.
func ModuleForCode(code ErrorCode) string {
	parts := strings.Split(string(code), "_")
	if len(parts) > 0 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}
