package contact

import "errors"

// ErrNotFound is returned when a contact id does not exist.
var ErrNotFound = errors.New("contact not found")
