package errors

import (
	"github.com/cockroachdb/errors"
)

// Re-exported constructors and predicates from cockroachdb/errors so callers
// only need one errors import.
var (
	New    = errors.New
	Newf   = errors.Newf
	Wrap   = errors.Wrap
	Wrapf  = errors.Wrapf
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	Join   = errors.Join
)
