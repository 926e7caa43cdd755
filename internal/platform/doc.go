// Package platform defines the platform abstraction at the heart of
// deploypack: the [Platform] classification, the marker-file [Detect]
// heuristic, the [Builder] lifecycle contract every platform implementation
// satisfies, and the [Registry] that dispatches a detected platform to its
// builder.
//
// The lifecycle is uniform across heterogeneous toolchains:
//
//	ValidateEnvironment → Clean → Build → CreateManifest
//
// Each step is gated on the previous step's success, and every platform
// produces the same [Manifest] shape for downstream deployment tooling.
// Concrete builders live in the subpackages dotnet, nodejs and python.
package platform
