package memory

import "errors"

// ErrLoadFailed wraps filesystem failures while reading documents.
var ErrLoadFailed = errors.New("load failed")
