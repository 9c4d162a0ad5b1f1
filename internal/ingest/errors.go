package ingest

import "errors"

// ErrAccountNotFound covers both an unknown api_key and an inactive
// account — the two are deliberately indistinguishable to ingest callers.
var ErrAccountNotFound = errors.New("account not found or inactive")
