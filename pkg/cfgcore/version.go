package cfgcore

import "github.com/hsiuhsiu/cfgcore-go/internal/abi"

var (
	Version = "v0.0.0-in-progress"
)

// WrapperVersion returns the semantic version populated at build time via
// ldflags. In development it defaults to v0.0.0-in-progress.
func WrapperVersion() string {
	return Version
}

// InterfaceVersion returns the ABI version of the embedded interface
// description, which is the version Open expects unless Config overrides it.
func InterfaceVersion() string {
	return abi.MustBuiltin().ABIVersion
}
