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

// ErrCodeUnknown marks an error without a classification.  Wrap preserves the
// inner code when given ErrCodeUnknown.
const ErrCodeUnknown ErrorCode = ""

// Common Error Codes
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeInvalidParam       ErrorCode = "COMMON_002"
	ErrCodeNotFound           ErrorCode = "COMMON_005"
	ErrCodeConflict           ErrorCode = "COMMON_006"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_008"
	ErrCodeTimeout            ErrorCode = "COMMON_009"
	ErrCodeValidation         ErrorCode = "COMMON_010"
	ErrCodeSerialization      ErrorCode = "COMMON_011"
	ErrCodeDatabaseError      ErrorCode = "COMMON_012"
	ErrCodeCacheError         ErrorCode = "COMMON_013"
	ErrCodeExternalService    ErrorCode = "COMMON_014"
	ErrCodeFeatureDisabled    ErrorCode = "COMMON_015"
	ErrCodeConfig             ErrorCode = "COMMON_016"
	ErrCodeStorage            ErrorCode = "COMMON_017"
	ErrCodeMessaging          ErrorCode = "COMMON_018"
)

// Public data source Error Codes
const (
	ErrCodePublicDataRequestFailed ErrorCode = "SRC_001"
	ErrCodePublicDataAPIError      ErrorCode = "SRC_002"
	ErrCodePublicDataKeyMissing    ErrorCode = "SRC_003"
	ErrCodePublicDataParseError    ErrorCode = "SRC_004"
)

// Region Module Error Codes
const (
	ErrCodeRegionNotFound ErrorCode = "REGION_001"
)

// Narrative generation Error Codes
const (
	ErrCodeNarrativeGenerationFailed ErrorCode = "AI_001"
	ErrCodeNarrativeSchemaViolation  ErrorCode = "AI_002"
	ErrCodeNarrativeCredentialMissing ErrorCode = "AI_003"
)

// ErrorCodeHTTPStatus maps codes to HTTP statuses.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeInvalidParam:       http.StatusBadRequest,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeValidation:         http.StatusBadRequest,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeDatabaseError:      http.StatusInternalServerError,
	ErrCodeCacheError:         http.StatusInternalServerError,
	ErrCodeExternalService:    http.StatusBadGateway,
	ErrCodeFeatureDisabled:    http.StatusServiceUnavailable,
	ErrCodeConfig:             http.StatusInternalServerError,
	ErrCodeStorage:            http.StatusInternalServerError,
	ErrCodeMessaging:          http.StatusInternalServerError,

	ErrCodePublicDataRequestFailed: http.StatusBadGateway,
	ErrCodePublicDataAPIError:      http.StatusBadGateway,
	ErrCodePublicDataKeyMissing:    http.StatusServiceUnavailable,
	ErrCodePublicDataParseError:    http.StatusBadGateway,

	ErrCodeRegionNotFound: http.StatusNotFound,

	ErrCodeNarrativeGenerationFailed:  http.StatusBadGateway,
	ErrCodeNarrativeSchemaViolation:   http.StatusBadGateway,
	ErrCodeNarrativeCredentialMissing: http.StatusServiceUnavailable,
}

// ErrorCodeMessage holds default messages per code.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:           "internal server error",
	ErrCodeInvalidParam:       "invalid parameter",
	ErrCodeNotFound:           "resource not found",
	ErrCodeConflict:           "resource conflict",
	ErrCodeServiceUnavailable: "service unavailable",
	ErrCodeTimeout:            "request timeout",
	ErrCodeValidation:         "validation failed",
	ErrCodeSerialization:      "serialization failed",
	ErrCodeDatabaseError:      "database error",
	ErrCodeCacheError:         "cache error",
	ErrCodeExternalService:    "external service error",
	ErrCodeFeatureDisabled:    "feature disabled",
	ErrCodeConfig:             "invalid configuration",
	ErrCodeStorage:            "object storage error",
	ErrCodeMessaging:          "messaging error",

	ErrCodePublicDataRequestFailed: "public data request failed",
	ErrCodePublicDataAPIError:      "public data API returned an error",
	ErrCodePublicDataKeyMissing:    "public data service key is missing",
	ErrCodePublicDataParseError:    "failed to parse public data response",

	ErrCodeRegionNotFound: "region not found",

	ErrCodeNarrativeGenerationFailed:  "narrative generation failed",
	ErrCodeNarrativeSchemaViolation:   "narrative document failed validation",
	ErrCodeNarrativeCredentialMissing: "narrative backend credential is missing",
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
	if len(parts) > 1 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}

//Personal.AI order the ending
