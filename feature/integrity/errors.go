package integrity

import "errors"

var errNoDatabase = errors.New("database connection is nil")
