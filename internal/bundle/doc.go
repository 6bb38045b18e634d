// Package bundle implements reusable configuration units.
//
// A Bundle receives a Bootstrap scoped to itself and may register modules,
// installers, extensions, commands and further bundles, add disable
// predicates, read options and add lifecycle listeners. Everything it
// registers is attributed to the bundle's source.
//
// The Processor runs bundles from a worklist until no new bundle type
// appears. Each bundle type is processed once; a bundle that registers a
// type already seen (including itself, directly or through a cycle) adds
// nothing to the worklist. A bundle is checked for disablement when it is
// taken from the worklist, so a bundle processed earlier can disable one
// queued later.
//
// Lookups provide bundles from outside the application code: the RIG_BUNDLES
// environment variable and bundles that mark themselves as automatic in the
// named catalog.
package bundle
