package zobject

import "errors"

// ErrNoSuchObject means an object ID was 0 or past the end of the object
// table, as computed from the property-table gap heuristic (or an explicit
// override).
var ErrNoSuchObject = errors.New("zobject: object id out of range")

// ErrCycle means a parent/sibling/child walk revisited an object it had
// already seen, which the object table format forbids but a corrupt or
// hostile story can still produce.
var ErrCycle = errors.New("zobject: cyclic object reference")
