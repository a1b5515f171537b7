package cfgcore

import "context"

// ReadValue reads key from st. It is shorthand for st.ReadValue.
func ReadValue(ctx context.Context, st *Store, key string) (string, error) {
	if st == nil {
		return "", &OwnershipError{Op: "ReadValue", Reason: "nil store"}
	}
	return st.ReadValue(ctx, key)
}

// Release releases st. It is shorthand for st.Release.
func Release(st *Store) error {
	return st.Release()
}
