package backend

import "errors"

var (
	ErrEmailTaken         = errors.New("an account with this email already exists")     // 409 Conflict
	ErrInvalidCredentials = errors.New("invalid email or password")                     // 401 Unauthorized
	ErrWrongLoginType     = errors.New("account is not registered for this login type") // 403 Forbidden
	ErrInvalidToken       = errors.New("invalid or expired token")                      // 401 Unauthorized
	ErrAccountNotFound    = errors.New("account not found")                             // 401 Unauthorized
	ErrCounselorNotFound  = errors.New("counselor not found")                           // 404 Not Found
	ErrInvalidDocument    = errors.New("document must be valid JSON")                   // 400 Bad Request
)
