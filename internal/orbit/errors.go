package orbit

import "errors"

var (
	// ErrInvalidPose indicates a gesture sample whose transform is
	// non-finite or not a rigid transform. The sample is dropped and the
	// previously applied node poses remain in effect.
	ErrInvalidPose = errors.New("invalid pose sample")

	// ErrInvalidTransition indicates a lifecycle call made from the wrong
	// state (for example Update while Idle). The call is a no-op; the
	// driver stays in its previous, consistent state.
	ErrInvalidTransition = errors.New("invalid driver state transition")
)
