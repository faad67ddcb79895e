package common

// APIResponse is the envelope of every API response. Exactly one of Data and
// Error is set.
type APIResponse struct {
	Success bool           `json:"success"`
	Data    any            `json:"data,omitempty"`
	Error   *ErrorResponse `json:"error,omitempty"`
}

// ErrorResponse carries a machine readable code next to the message shown to
// participants. Domain failures use the service codes (TEAM_FULL,
// NAME_TAKEN, ...); the codes below cover transport-level failures.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// MessageResponse is the payload of calls that return no resource
type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorCode string

const (
	ErrCodeValidation      ErrorCode = "VALIDATION_ERROR"
	ErrCodeNotFound        ErrorCode = "NOT_FOUND"
	ErrCodeUnauthorized    ErrorCode = "UNAUTHORIZED"
	ErrCodeInternalServer  ErrorCode = "INTERNAL_SERVER_ERROR"
	ErrCodeBadRequest      ErrorCode = "BAD_REQUEST"
	ErrCodeTooManyRequests ErrorCode = "TOO_MANY_REQUESTS"

	// Dashboard navigation
	ErrCodeUnknownSection  ErrorCode = "UNKNOWN_SECTION"
	ErrCodeDashboardClosed ErrorCode = "DASHBOARD_CLOSED"
)

func NewSuccessResponse(data any) APIResponse {
	return APIResponse{Success: true, Data: data}
}

func NewMessageResponse(message string) APIResponse {
	return NewSuccessResponse(MessageResponse{Message: message})
}

func NewErrorResponse(code ErrorCode, message string, details any) APIResponse {
	return APIResponse{
		Error: &ErrorResponse{
			Code:    string(code),
			Message: message,
			Details: details,
		},
	}
}
