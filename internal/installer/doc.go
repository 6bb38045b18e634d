// Package installer binds extensions to the installers that activate them.
//
// Matching happens before the container exists: every extension is offered
// to the installers in order and the first one whose Matches returns true
// claims it. An extension nobody claims is a resolution error. The
// resulting Plan is activated after the container is created: the
// container injects the extensions' tagged fields, then each installer is
// called once with all of its extensions.
//
// Installers and the extensions of one installer are sorted by Order when
// they implement Ordered; values without an order count as 0 and keep their
// registration order among equals.
package installer
