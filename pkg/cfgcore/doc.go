// Package cfgcore exposes the cfgcore native configuration-store library to
// Go callers.
//
// A Library is opened once, verified against the interface description it
// was built with, and closed when no longer needed. Stores and snapshots are
// handles to native objects; each must be released exactly once:
//
//	lib, err := cfgcore.Open(cfgcore.Config{})
//	if err != nil {
//	    return err
//	}
//	defer lib.Close()
//
//	st, err := lib.OpenStore(ctx, "config-a")
//	if err != nil {
//	    return err
//	}
//	defer st.Release()
//
//	v, err := st.ReadValue(ctx, "key1")
//
// Using a released handle returns an error matching ErrOwnership; it never
// reaches native code. Native failures match ErrNativeFailure and carry a
// stable code (see ErrorCode) and a message. Every call into the library is
// serialized, because cfgcore is not reentrant.
//
// Builds without cgo, or for windows, compile but Open returns ErrNotBuilt.
package cfgcore
