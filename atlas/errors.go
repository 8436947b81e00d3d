package atlas

import "errors"

// ErrCapacityExceeded is returned by append_mesh/append_instances when the
// operation would write past a buffer's fixed capacity. No partial state is
// written; the caller is expected to fail the load.
var ErrCapacityExceeded = errors.New("atlas: capacity exceeded")

// ErrFinalizeEmpty is returned by Finalize when no instance segments were
// ever recorded. The pool stays in Loading.
var ErrFinalizeEmpty = errors.New("atlas: finalize called with no pending segments")

// ErrPhaseViolation is returned by AppendMesh, AppendInstances and
// RecordCommandInstances when called after the pool has left Loading.
// Rendering before Finalized does not return it: render.Driver.Render is
// then a no-op.
var ErrPhaseViolation = errors.New("atlas: operation not valid in current phase")

// ErrDeviceLost is the sentinel for a lost GPU device, after which the pool
// cannot recover and the host must tear down and reinitialize. No function
// in this module returns it; device loss is not detected here.
var ErrDeviceLost = errors.New("atlas: device lost")
