// Package errors provides structured error handling for scout.
//
// Codes read ERR_<number>_<NAME>. The hundreds digit picks the category:
// 1 config, 2 local files, 3 the remote search service, 4 user input,
// anything else internal.
package errors

// Category classifies an error by where it came from.
type Category string

const (
	CategoryConfig     Category = "CONFIG"
	CategoryIO         Category = "IO"
	CategoryNetwork    Category = "NETWORK"
	CategoryValidation Category = "VALIDATION"
	CategoryInternal   Category = "INTERNAL"
)

// Severity tells the caller how loudly to report an error.
type Severity string

const (
	// SeverityError means the operation failed.
	SeverityError Severity = "ERROR"
	// SeverityWarning means the operation failed but trying again may work.
	SeverityWarning Severity = "WARNING"
	// SeverityInfo means scout recovered on its own.
	SeverityInfo Severity = "INFO"
)

const (
	ErrCodeConfigNotFound   = "ERR_101_CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid    = "ERR_102_CONFIG_INVALID"
	ErrCodeConfigPermission = "ERR_103_CONFIG_PERMISSION"

	ErrCodeHistoryWrite = "ERR_202_HISTORY_WRITE"
	ErrCodeFileCorrupt  = "ERR_206_FILE_CORRUPT"

	ErrCodeNetworkTimeout     = "ERR_301_NETWORK_TIMEOUT"
	ErrCodeNetworkUnavailable = "ERR_302_NETWORK_UNAVAILABLE"
	ErrCodeRemoteStatus       = "ERR_303_REMOTE_STATUS"
	ErrCodeBadResponse        = "ERR_304_BAD_RESPONSE"

	ErrCodeInvalidInput  = "ERR_401_INVALID_INPUT"
	ErrCodeInvalidFilter = "ERR_402_INVALID_FILTER"
	ErrCodeQueryEmpty    = "ERR_404_QUERY_EMPTY"

	ErrCodeInternal     = "ERR_501_INTERNAL"
	ErrCodeSearchFailed = "ERR_503_SEARCH_FAILED"
)

// codeTraits holds what a code says beyond its category.
type codeTraits struct {
	severity  Severity
	retryable bool
}

// traits lists codes that differ from the default of a non-retryable
// SeverityError.
var traits = map[string]codeTraits{
	// Corrupt history is recovered by starting empty.
	ErrCodeFileCorrupt: {severity: SeverityInfo},
	// History that fails to save stays usable in memory.
	ErrCodeHistoryWrite: {severity: SeverityInfo},

	ErrCodeNetworkTimeout:     {severity: SeverityWarning, retryable: true},
	ErrCodeNetworkUnavailable: {severity: SeverityWarning, retryable: true},
	ErrCodeRemoteStatus:       {severity: SeverityWarning, retryable: true},
}

var categoryByDigit = map[byte]Category{
	'1': CategoryConfig,
	'2': CategoryIO,
	'3': CategoryNetwork,
	'4': CategoryValidation,
}

func categoryFromCode(code string) Category {
	if len(code) < 7 || code[:4] != "ERR_" {
		return CategoryInternal
	}
	if c, ok := categoryByDigit[code[4]]; ok {
		return c
	}
	return CategoryInternal
}

func severityFromCode(code string) Severity {
	if t, ok := traits[code]; ok {
		return t.severity
	}
	return SeverityError
}

// isRetryableCode reports whether the user may reasonably try again.
// Nothing in scout retries on its own; this only drives hints.
func isRetryableCode(code string) bool {
	return traits[code].retryable
}
