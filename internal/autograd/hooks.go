package autograd

// PreHook runs before a Function's Apply, receiving the gradients flowing
// into the node. It may return a replacement slice (same length) or nil to
// leave the gradients unchanged.
type PreHook func(gradOutputs []*Variable) []*Variable

// PostHook runs after a Function's Apply, observing the gradients the node
// produced for its inputs alongside the gradients it consumed.
type PostHook func(gradInputs, gradOutputs []*Variable)
