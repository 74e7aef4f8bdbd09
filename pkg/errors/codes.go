package errors

import (
	"net/http"
	"strings"
)

// ErrorCode is a string representation of a specific error condition.
// Codes follow the "MODULE_NNN" convention.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common Error Codes
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
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
	ErrCodeNotImplemented     ErrorCode = "COMMON_016"
)

// Sentinel pseudo-codes
const (
	CodeOK      = ErrorCode("OK")
	CodeUnknown = ErrorCode("UNKNOWN")
)

// Observation Module Error Codes
const (
	ErrCodeObservationInvalid ErrorCode = "OBS_001"
	ErrCodeObservationDecode  ErrorCode = "OBS_002"
)

// Market Module Error Codes
const (
	ErrCodeMarketRequestInvalid ErrorCode = "MKT_001"
	ErrCodeNegativeCount        ErrorCode = "MKT_002"
	ErrCodeNegativeMetric       ErrorCode = "MKT_003"
	ErrCodeReportNotFound       ErrorCode = "MKT_004"
	ErrCodeAnalysisCancelled    ErrorCode = "MKT_005"
)

// Benchmark Module Error Codes
const (
	ErrCodeBenchmarkInvalid  ErrorCode = "BMK_001"
	ErrCodeBenchmarkNotFound ErrorCode = "BMK_002"
)

// Scoring Module Error Codes
const (
	ErrCodeWeightsInvalid ErrorCode = "SCR_001"
)

// Infrastructure Error Codes
const (
	ErrCodeMessageQueue ErrorCode = "MQ_001"
	ErrCodeStorage      ErrorCode = "STORE_001"
	ErrCodeSearchIndex  ErrorCode = "SEARCH_001"
)

// ErrorCodeHTTPStatus maps ErrorCodes to HTTP status codes.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeTooManyRequests:    http.StatusTooManyRequests,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeValidation:         http.StatusUnprocessableEntity,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeDatabaseError:      http.StatusInternalServerError,
	ErrCodeCacheError:         http.StatusInternalServerError,
	ErrCodeExternalService:    http.StatusBadGateway,
	ErrCodeNotImplemented:     http.StatusNotImplemented,

	ErrCodeObservationInvalid: http.StatusBadRequest,
	ErrCodeObservationDecode:  http.StatusBadRequest,

	ErrCodeMarketRequestInvalid: http.StatusBadRequest,
	ErrCodeNegativeCount:        http.StatusUnprocessableEntity,
	ErrCodeNegativeMetric:       http.StatusUnprocessableEntity,
	ErrCodeReportNotFound:       http.StatusNotFound,
	ErrCodeAnalysisCancelled:    http.StatusGatewayTimeout,

	ErrCodeBenchmarkInvalid:  http.StatusUnprocessableEntity,
	ErrCodeBenchmarkNotFound: http.StatusNotFound,

	ErrCodeWeightsInvalid: http.StatusUnprocessableEntity,

	ErrCodeMessageQueue: http.StatusInternalServerError,
	ErrCodeStorage:      http.StatusInternalServerError,
	ErrCodeSearchIndex:  http.StatusInternalServerError,
}

// ErrorCodeMessage maps ErrorCodes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:           "internal server error",
	ErrCodeBadRequest:         "bad request",
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

	ErrCodeObservationInvalid: "invalid observation",
	ErrCodeObservationDecode:  "failed to decode observations",

	ErrCodeMarketRequestInvalid: "invalid market request",
	ErrCodeNegativeCount:        "business count must not be negative",
	ErrCodeNegativeMetric:       "market metric must not be negative",
	ErrCodeReportNotFound:       "market report not found",
	ErrCodeAnalysisCancelled:    "analysis cancelled before completion",

	ErrCodeBenchmarkInvalid:  "invalid benchmark configuration",
	ErrCodeBenchmarkNotFound: "benchmark not found",

	ErrCodeWeightsInvalid: "invalid scoring weights",

	ErrCodeMessageQueue: "message queue error",
	ErrCodeStorage:      "object storage error",
	ErrCodeSearchIndex:  "search index error",
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

// ModuleForCode returns the module prefix of an ErrorCode.
func ModuleForCode(code ErrorCode) string {
	parts := strings.Split(string(code), "_")
	if len(parts) > 0 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}

//Personal.AI order the ending
