package service

import "errors"

var errDuplicateUuid = errors.New("an execution with this uuid is already in progress")
