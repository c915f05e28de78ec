package scanner

import "errors"

var errNotDirectory = errors.New("not a directory")
