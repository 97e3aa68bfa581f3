// Package errors provides structured error types for the dotnet-metadata library.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type includes rich context: field path, stream/table names, and cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseDecode, errors.KindMalformedHeap).
//		Stream("#Strings").
//		Detail("no NUL terminator before heap end").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.OutOfBounds(errors.PhaseDecode, 120, 4, 96)
//	err := errors.InvalidRow("TypeDef", 12, 4)
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
