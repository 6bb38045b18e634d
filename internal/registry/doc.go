// Package registry tracks every item offered to the bootstrap: modules,
// installers, extensions, bundles and commands.
//
// Items are identified by their kind and concrete Go type. Registering a
// type twice is not an error; the second call returns the existing Info and
// only records the additional source. Overriding modules are kept in their
// own uniqueness domain so the same module type can be offered both as a
// normal and as an overriding module; the normal registration wins and the
// override is marked Ignored.
//
// Disabling is predicate based. Predicates are stored and evaluated once
// against every item: retroactively for items already present and on first
// registration for later ones. The outcome does not depend on whether a
// predicate is added before or after the items it matches, and a disabled
// item never becomes enabled again.
//
// After Freeze every mutation fails with a state error.
package registry
