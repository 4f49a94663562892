package pipeline

import "errors"

// ErrFinished is returned by Process after Finish has handed off the
// collection.
var ErrFinished = errors.New("processor finished")
