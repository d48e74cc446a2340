package inkpost

import "errors"

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("inkpost: not found")
	// ErrEmailTaken is returned when registering an email that already has an account.
	ErrEmailTaken = errors.New("inkpost: email already registered")
	// ErrDuplicateTitle is returned when a post title is already in use.
	ErrDuplicateTitle = errors.New("inkpost: post title already exists")
	// ErrPasswordTooLong is returned by Register for passwords bcrypt cannot hash.
	ErrPasswordTooLong = errors.New("inkpost: password longer than 72 bytes")
	// ErrUnknownEmail is returned by Authenticate when no account has the email.
	ErrUnknownEmail = errors.New("inkpost: unknown email")
	// ErrWrongPassword is returned by Authenticate when the password does not match.
	ErrWrongPassword = errors.New("inkpost: wrong password")
)
