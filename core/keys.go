package core

// Persisted key names.
const (
	KeyAuthToken   = "auth_token"
	KeyUserData    = "user_data"
	KeyUserRole    = "user_role"
	KeyAppSettings = "app_settings"
	KeyLastSync    = "last_sync"
)

// SessionKeys are removed together on logout.
var SessionKeys = []string{KeyAuthToken, KeyUserData, KeyUserRole}
