package contract

import "errors"

var (
	ErrUnknownTool     = errors.New("unknown tool")
	ErrSchemaViolation = errors.New("tool arguments violate schema")
	ErrNotFound        = errors.New("record not found")
	ErrHandlerFailure  = errors.New("tool handler failed")
	ErrProvider        = errors.New("llm provider call failed")
	ErrBusinessRule    = errors.New("business rule violation")
	ErrValidation      = errors.New("validation failed")
)
