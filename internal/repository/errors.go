// Package repository defines error types that are reused across the
// storage implementations. These sentinel values allow higher layers
// such as handlers to distinguish between different failure
// scenarios. For example, ErrSlotBooked indicates that a booking
// attempt raced with or followed another booking of the same slot,
// while ErrForbidden signals that a protected default template may
// not be deleted.
package repository

import "errors"

// ErrSlotNotFound indicates that a slot was not located in the store.
// Handlers should translate this into an HTTP 404 response.
var ErrSlotNotFound = errors.New("slot not found")

// ErrReleaseNotFound indicates that a release was not located in the
// store. Handlers should translate this into an HTTP 404 response.
var ErrReleaseNotFound = errors.New("release not found")

// ErrTemplateNotFound indicates that an email template was not
// located in the store. Handlers should translate this into an HTTP
// 404 response.
var ErrTemplateNotFound = errors.New("template not found")

// ErrUserNotFound indicates that no user matches the given username.
var ErrUserNotFound = errors.New("user not found")

// ErrSlotBooked is returned when a booking targets a slot that is
// already occupied by a release. Handlers should translate this into
// an HTTP 409 response.
var ErrSlotBooked = errors.New("slot is already booked")

// ErrInvalidArgument is returned when a request fails validation,
// such as a missing required field or a booking against a past-dated
// slot. Callers wrap it with fmt.Errorf("%w: ...") to add detail and
// handlers match it with errors.Is, translating it into an HTTP 400
// response.
var ErrInvalidArgument = errors.New("invalid argument")

// ErrForbidden is returned when the caller attempts an operation
// that is never permitted on the target, such as deleting a default
// email template. Handlers should translate this into an HTTP 403
// response.
var ErrForbidden = errors.New("forbidden")

// ErrUsernameTaken is returned when registration collides with an
// existing username.
var ErrUsernameTaken = errors.New("username already taken")
