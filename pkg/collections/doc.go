// Package collections provides the generic containers of the runtime:
// equality comparers, key/value pairs, the hash-bucket Dictionary and the
// bounds-checked List. Every container reports its instantiated generic
// descriptor through RuntimeType so type tests see it like any other
// runtime instance.
//
// Containers are not safe for concurrent use.
package collections
