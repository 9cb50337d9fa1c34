// Package build holds build-time information.
package build

// Version is the application version and the host version the core is matched against.
// It defaults to "0.0.0-dev" and can be overwritten by linker flags.
var Version = "0.0.0-dev"

// Commit is the git commit the binary was built from.
var Commit = "none"

// Date is the build date.
var Date = "unknown"
