package core

import "errors"

// Validation errors (client input, reported before any I/O)
var (
	ErrEmailRequired          = errors.New("email is required")                      // 400
	ErrPasswordRequired       = errors.New("password is required")                   // 400
	ErrPasswordTooShort       = errors.New("password must be at least 6 characters") // 400
	ErrInvalidEmail           = errors.New("please enter a valid email address")     // 400
	ErrFirstNameRequired      = errors.New("first name is required")                 // 400
	ErrLastNameRequired       = errors.New("last name is required")                  // 400
	ErrRoleInvalid            = errors.New("role must be student or counselor")      // 400
	ErrLoginAsInvalid         = errors.New("login type must be user or counselor")   // 400
	ErrCounselorFieldsMissing = errors.New("counselor profile fields are required")  // 400
	ErrCounselorIDRequired    = errors.New("counselor id is required")               // 400
	ErrMessageRequired        = errors.New("message is required")                    // 400
)

// Session errors
var (
	ErrNotAuthenticated = errors.New("not authenticated")                      // 401
	ErrMissingToken     = errors.New("login response did not include a token") // 502
	ErrMissingProfile   = errors.New("response did not include a profile")     // 502
	ErrTokenExpired     = errors.New("token expired")                          // 401
	ErrPersistFailed    = errors.New("failed to persist session")              // 500
)

// API errors
var (
	ErrRequestFailed = errors.New("request failed")
)

// Storage errors
var (
	ErrKeyNotFound = errors.New("key not found")
	ErrStoreClosed = errors.New("store is closed")
)

// Settings errors
var (
	ErrUnknownSetting = errors.New("unknown setting")
	ErrInvalidSetting = errors.New("invalid setting value")
)

// Config errors
var (
	ErrStoreRequired      = errors.New("key-value store is required")
	ErrAPIRequired        = errors.New("api client is required")
	ErrBaseURLRequired    = errors.New("api base url is required")
	ErrUnknownStoreDriver = errors.New("unknown store driver")
)
