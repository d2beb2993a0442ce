package repository

import "errors"

var ErrRunNotFound = errors.New("report run not found")
