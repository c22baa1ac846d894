package merge

import "fmt"

// DeletedFileMessage is the diagnostic for a merge input that is missing
// on disk.
const DeletedFileMessage = "The merged file was deleted in one version."

// SemistructuredError reports any failure during superimposition or in a
// handler. It carries the current merge context so the caller can fall
// back to a pure textual merge of the whole file.
type SemistructuredError struct {
	Message string
	Context *Context
	Err     error
}

func (e *SemistructuredError) Error() string {
	return fmt.Sprintf("semistructured merge: %s", e.Message)
}

func (e *SemistructuredError) Unwrap() error { return e.Err }

// semistructuredErr wraps err with its own message as the diagnostic.
func semistructuredErr(ctx *Context, err error) *SemistructuredError {
	return &SemistructuredError{Message: err.Error(), Context: ctx, Err: err}
}
