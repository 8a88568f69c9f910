package core

import "errors"

// ErrDuplicateUsername is returned by DbClient.CreateUser when the username
// is already taken. It is the only registration failure recovered locally.
var ErrDuplicateUsername = errors.New("username already exists")

// ErrInvalidRole is returned by DbClient.AppendMessage for a role outside
// the {user, assistant} enumeration.
var ErrInvalidRole = errors.New("invalid message role")
