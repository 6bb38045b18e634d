// Package dependency provides a small directed graph used to explain where
// bootstrap items came from.
//
// Nodes are either registration scopes (application, lookup, host bundles,
// package scan, hooks) or registered items. Every item node depends on the
// node that first registered it: the scope, or the bundle item for
// registrations made inside a bundle. Walking dependents from a scope node
// therefore yields the registration tree printed by the diagnostic report:
//
//	application
//	├── bundle:*metrics.Bundle
//	│   ├── installer:*metrics.CollectorInstaller
//	│   └── extension:*metrics.RequestCounter
//	└── module:*app.StorageModule
//
// The graph is built after bundle processing and is not updated afterwards.
// It is not safe for concurrent writes.
package dependency
