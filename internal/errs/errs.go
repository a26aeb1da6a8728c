// Package errs holds the error taxonomy shared by the generation, mapping and
// catalog layers. Callers wrap one of the sentinels with fmt.Errorf("%w: ...")
// and branch with errors.Is.
package errs

import "errors"

var (
	// ErrNotFound indicates a referenced draft, batch or mapping profile does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalid indicates malformed input such as an unknown product type or
	// a missing generation type.
	ErrInvalid = errors.New("invalid input")

	// ErrUpstream indicates the AI or catalog API failed or answered with an
	// unexpected shape.
	ErrUpstream = errors.New("upstream call failed")

	// ErrPersistence indicates a storage save or delete failed.
	ErrPersistence = errors.New("persistence failure")
)
