package checkout

import "github.com/pkg/errors"

// order.ErrAlreadyCommitted completes the taxonomy: it is returned when a
// commit or re-payment races an order that already reached committed state.
var (
	// ErrUnsupported marks an operation invalid in the session's current
	// state (checkout not finished, payment not activated, ...). Callers fix
	// the precondition; retrying as-is will fail again.
	ErrUnsupported = errors.New("operation unsupported in current checkout state")

	// ErrOutOfSequence marks a step commit ahead of the current step.
	// Recoverable by committing the intervening steps first.
	ErrOutOfSequence = errors.New("there are uncommitted previous steps")

	// ErrStepNotFound marks a step name unknown to this session.
	ErrStepNotFound = errors.New("checkout step not found")
)
