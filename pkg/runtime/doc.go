// Package runtime implements the object model: the type registry and its
// dotted namespace tree, generic instantiation, the class builder with
// explicit base dispatch, *Object instances, and the reflection helpers
// (type tests, hash codes, default values, equality, enumerator adaptation)
// that the collections, task and delegate packages build on.
package runtime
