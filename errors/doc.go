// Package errors provides structured error types for the GDSII writer.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries the hierarchy path, the GDSII record involved, and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseEncode, errors.KindOverflow).
//		Path("mylib", "inverter").
//		Record("XY").
//		Detail("coordinate %d exceeds int32", v).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.IO("flush block", cause)
//	err := errors.NotFound(errors.PhaseLoad, "cell", "inv")
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
