package storage

import "errors"

// errNotFound is returned by DegradedStore's lookups, which never find
// anything. SQLStore lookups report a missing row with gorm's own
// record-not-found error instead.
var errNotFound = errors.New("storage: not found")
