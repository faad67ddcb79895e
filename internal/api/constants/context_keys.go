package constants

// Context keys for validated requests
const (
	// Auth context keys
	ContextKeyLogin    = "login"
	ContextKeyRegister = "register"

	// Team context keys
	ContextKeyCreateTeam = "createTeam"
	ContextKeyJoinTeam   = "joinTeam"

	// Session context keys
	ContextKeySession   = "session"
	ContextKeyPrincipal = "principal"
	ContextKeyRequestID = "request_id"
)
