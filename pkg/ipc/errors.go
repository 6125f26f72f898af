package ipc

import "errors"

// ErrMalformed wraps every body-decode failure: wrong length for a fixed
// body, or (for framing) a declared length outside the transport's limit.
var ErrMalformed = errors.New("ipc: malformed message")
