// Package delegate implements multicast delegates: immutable invocation lists
// built with Combine and shrunk with Remove, where an empty list is always the
// nil *Delegate. Event is the usual consumer.
package delegate
