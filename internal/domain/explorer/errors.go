package explorer

import "errors"

// ErrSuperseded indicates a load result arrived after a newer load had
// already been applied, and was discarded.
var ErrSuperseded = errors.New("load superseded by a newer load")
