package strategy

import "errors"

// ErrNoHosts is returned by selection strategies when the candidate set is
// empty or every candidate has zero weight.
var ErrNoHosts = errors.New("no hosts available for selection")
