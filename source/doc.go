// Package source provides adapters and decorators for implementing the
// batchloader.FetchSource interface.
//
// FetchFunc adapts a plain function, MapSource serves a static fixture,
// ObservedSource reports every actual fetch call to an injectable callback,
// and LintSource validates that an implementation honors the FetchSource
// contract.
package source
