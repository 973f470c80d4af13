package employee

import "errors"

var (
	ErrEmployeeNotFound    = errors.New("employee not found")
	ErrEmployeeIDExists    = errors.New("employee id already exists")
	ErrMailIDExists        = errors.New("mail id already registered")
	ErrEmployeeIDsRequired = errors.New("employee ids are required")
)
