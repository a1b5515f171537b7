// Package internalcheck holds repository policy tests.
//
// The tests load the module's packages with golang.org/x/tools/go/packages
// and fail when a boundary rule is broken: only internal/cgo may use cgo or
// unsafe, the public packages never reach the C shim directly nor build
// handles themselves, and config values are never hex-formatted into errors
// or logs.
//
// # Internal Use Only
//
// This package has no API. Applications use pkg/cfgcore instead.
package internalcheck
