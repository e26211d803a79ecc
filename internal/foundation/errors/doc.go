// Package errors provides the classified error primitives used across docpathfix.
//
// Every failure that can end a run is expressed as a ClassifiedError carrying a
// category, a severity and structured context. The CLI adapter maps categories to
// process exit codes so a documentation build can tell a broken tree apart from a
// bad invocation.
//
// Key features:
//   - ErrorCategory: broad classification (config, validation, discovery, filesystem, ...)
//   - ErrorSeverity: impact level (fatal, error, warning, info)
//   - ClassifiedError: structured error with category, severity and context
//   - ErrorBuilder: fluent API for creating classified errors
//   - CLIErrorAdapter: exit code mapping and user-facing formatting
//
// Example usage:
//
//	err := errors.ReadError(path, cause).
//		WithContext("worker", id).
//		Build()
package errors
