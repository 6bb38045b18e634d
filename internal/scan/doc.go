// Package scan implements package-catalog discovery.
//
// Go has no runtime class path to walk, so packages that want to be
// discoverable add their values to a Catalog from an init function:
//
//	func init() {
//		scan.Register("example.com/app/jobs", &CleanupTask{}, &ReindexTask{})
//	}
//
// A CatalogScanner returns the values registered under the requested package
// prefixes. Each prefix is collected concurrently and the results are merged
// in a deterministic order: requested prefix order, then catalog package
// name, then registration order. Values implementing Invisible are skipped.
//
// Scan results are cached until Cleanup, which the bootstrap calls exactly
// once after extensions are installed. A cleaned scanner refuses new scans.
package scan
