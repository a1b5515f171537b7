// Package bindings is the Go-idiomatic adapter over the flattened cfgcore
// ABI exposed by internal/cgo.
//
// Every native call made through an Adapter follows the same path:
//
//  1. arguments are validated against the limits in the interface
//     description; a violation returns a *MarshalError and nothing is sent
//     to native code;
//  2. the call gate is entered (a single slot for serialized libraries, a
//     bounded semaphore for concurrent ones, optionally rate limited);
//  3. handles are borrowed from the generational handle table, which
//     rejects released, stale, foreign and busy handles with an
//     *OwnershipError;
//  4. the shim is invoked and a failing status is translated into a
//     *NativeError carrying the op name, code and message.
//
// Raw status codes and native pointers never leave this package.
package bindings
