package domain

import "errors"

// Domain errors - used across all layers
var (
	// ErrNotFound indicates the requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates the input is invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidProvider indicates an unknown AI provider was specified
	ErrInvalidProvider = errors.New("invalid provider")

	// ErrServiceUnavailable indicates the AI service could not be reached
	ErrServiceUnavailable = errors.New("service unavailable")

	// ErrUnsupportedFormat indicates no reader is registered for a file extension
	ErrUnsupportedFormat = errors.New("unsupported document format")

	// ErrDimensionMismatch indicates a vector does not match the index dimension
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrSchemaNotDiscovered indicates SQL generation was attempted before a
	// successful schema discovery
	ErrSchemaNotDiscovered = errors.New("Error: Database schema has not been discovered yet.")

	// ErrGenerationFailed indicates the language model could not produce a query
	ErrGenerationFailed = errors.New("Error generating SQL query")

	// ErrUnsafeQuery indicates the safety gate rejected a statement
	ErrUnsafeQuery = errors.New("Query contains potentially destructive commands.")

	// ErrNoDatabase indicates no relational store is connected
	ErrNoDatabase = errors.New("no database connected")
)
