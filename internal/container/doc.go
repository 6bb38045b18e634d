// Package container defines the dependency-injection container contract used
// by the bootstrap and ships a small reflective default implementation.
//
// The bootstrap hands the final module list to a Factory exactly once per
// run. Any container library can be plugged in by implementing Factory; the
// default one supports what the bundled installers need:
//
//   - instance and provider bindings (see package module);
//   - singletons, built eagerly in the Production stage and lazily in
//     Development, never in Tool;
//   - field injection into structs through `inject` tags:
//
//     type Handler struct {
//         Store  Store  `inject:""`
//         Region string `inject:"region"`
//         Cache  Cache  `inject:",optional"`
//     }
//
//   - cycle detection between providers.
//
// The container binds itself under module.KeyOf[Container]().
package container
