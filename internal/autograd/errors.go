package autograd

import "github.com/pkg/errors"

// Sentinel errors for the failure modes backward can surface. Callers match
// with errors.Is; the engine wraps them with the offending operation's name
// and sequence number so the forward call site can be located.
var (
	// ErrNotDifferentiable is returned when an operation without a backward
	// formula is recorded under gradient tracking.
	ErrNotDifferentiable = errors.New("operation is not differentiable")

	// ErrVersionMismatch is returned when a backward formula unpacks a saved
	// tensor whose source was mutated in place after it was saved.
	ErrVersionMismatch = errors.New("one of the variables needed for gradient computation has been modified by an in-place operation")

	// ErrBackwardNotImplemented is returned when an error-sentinel function is
	// reached during backward.
	ErrBackwardNotImplemented = errors.New("backward is not implemented")

	// ErrGradientShapeMismatch is returned when the implicit ones gradient is
	// requested for a non-scalar root, or when a produced gradient's shape
	// does not match the shape its consumer expects.
	ErrGradientShapeMismatch = errors.New("gradient shape mismatch")

	// ErrGraphAlreadyFreed is returned when backward runs a second time over a
	// graph whose saved state was released (retainGraph was false).
	ErrGraphAlreadyFreed = errors.New("graph has already been freed; specify retainGraph to backward through it a second time")

	// ErrConcurrentModification is returned when a variable consumed by
	// backward was mutated in place while the backward pass was running.
	ErrConcurrentModification = errors.New("variable was modified in place during the backward pass")

	// ErrInPlaceOnLeaf is returned when an in-place operation targets a leaf
	// variable that requires grad while gradient tracking is enabled.
	ErrInPlaceOnLeaf = errors.New("a leaf variable that requires grad is being used in an in-place operation")
)

// NotDifferentiable wraps ErrNotDifferentiable with the operation name.
// Operator implementations call this at forward time when gradient tracking
// is enabled and no backward formula exists.
func NotDifferentiable(opName string) error {
	return errors.Wrapf(ErrNotDifferentiable, "%s", opName)
}
