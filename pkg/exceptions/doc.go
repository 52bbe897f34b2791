// Package exceptions defines the runtime's single-rooted exception tree: a
// fixed set of kinds with default messages, the *Exception error value that
// carries kind, message, inner cause, stack snapshot and data bag, and the
// classification of native Go failures (errors and recovered panics) into
// that tree.
package exceptions
