// Package module defines configuration modules and the binder they write
// their bindings to.
//
// A Module contributes bindings (key to instance or key to provider) to a
// Binder. Keys are a Go type plus an optional name. Within one binder a key
// may be bound only once; a second binding is recorded as an error unless
// duplicates were permitted, in which case the first binding stays.
//
// Override combines two module sets into one module. Bindings whose key
// appears on the override side replace the root binding in place, and
// override-only bindings follow the root bindings.
package module
