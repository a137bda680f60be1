package contract

import "errors"

// Wire codes carried in tool error responses so a remote caller can
// recover the taxonomy without parsing error strings.
const (
	CodeUnknownTool     = "unknown_tool"
	CodeSchemaViolation = "schema_violation"
	CodeNotFound        = "not_found"
	CodeHandlerFailure  = "handler_failure"
	CodeProvider        = "provider_error"
	CodeBusinessRule    = "business_rule_violation"
)

// CodeFor maps a taxonomy error to its wire code. Unclassified errors
// report as handler failures.
func CodeFor(err error) string {
	switch {
	case errors.Is(err, ErrUnknownTool):
		return CodeUnknownTool
	case errors.Is(err, ErrSchemaViolation):
		return CodeSchemaViolation
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	case errors.Is(err, ErrProvider):
		return CodeProvider
	case errors.Is(err, ErrBusinessRule):
		return CodeBusinessRule
	default:
		return CodeHandlerFailure
	}
}

// SentinelFor is the inverse of CodeFor.
func SentinelFor(code string) error {
	switch code {
	case CodeUnknownTool:
		return ErrUnknownTool
	case CodeSchemaViolation:
		return ErrSchemaViolation
	case CodeNotFound:
		return ErrNotFound
	case CodeProvider:
		return ErrProvider
	case CodeBusinessRule:
		return ErrBusinessRule
	default:
		return ErrHandlerFailure
	}
}
