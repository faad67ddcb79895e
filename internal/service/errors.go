package service

import (
	"errors"
	"fmt"
)

// Sentinel errors for service layer
var (
	ErrValidation       = errors.New("validation error")
	ErrConflict         = errors.New("conflict error")
	ErrNotFound         = errors.New("not found")
	ErrUnavailable      = errors.New("backend unavailable")
	ErrUnauthenticated  = errors.New("unauthenticated")
	ErrPartialHydration = errors.New("partial hydration loss")
)

// Machine-readable failure codes surfaced to clients.
const (
	CodeDuplicateAccount        = "DUPLICATE_ACCOUNT"
	CodeInvalidCredentialFormat = "INVALID_CREDENTIAL_FORMAT"
	CodeInvalidCredentials      = "INVALID_CREDENTIALS"
	CodeInvalidInput            = "INVALID_INPUT"
	CodeInvalidCapacity         = "INVALID_CAPACITY"
	CodeNameTaken               = "NAME_TAKEN"
	CodeGenerationExhausted     = "CODE_GENERATION_EXHAUSTED"
	CodeCodeNotFound            = "CODE_NOT_FOUND"
	CodeTeamFull                = "TEAM_FULL"
	CodeAlreadyMember           = "ALREADY_MEMBER"
	CodeTeamNotFound            = "TEAM_NOT_FOUND"
	CodePrincipalNotFound       = "PRINCIPAL_NOT_FOUND"
	CodeBackendUnavailable      = "BACKEND_UNAVAILABLE"
	CodeSubmissionExists        = "SUBMISSION_EXISTS"
	CodeFileTooLarge            = "FILE_TOO_LARGE"
	CodeNotInTeam               = "NOT_IN_TEAM"
	CodeRoundLocked             = "ROUND_LOCKED"
)

// Error is a tagged service failure. errors.Is matches it against its Kind
// and against any *Error with the same Code.
type Error struct {
	Code    string
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// Wrap returns a copy of e carrying cause.
func (e *Error) Wrap(cause error) *Error {
	c := *e
	c.Err = cause
	return &c
}

// Concrete failures. Compare with errors.Is.
var (
	ErrDuplicateAccount        = &Error{Code: CodeDuplicateAccount, Kind: ErrConflict, Message: "an account with this email already exists"}
	ErrInvalidCredentialFormat = &Error{Code: CodeInvalidCredentialFormat, Kind: ErrValidation, Message: "email or password is malformed"}
	ErrInvalidCredentials      = &Error{Code: CodeInvalidCredentials, Kind: ErrUnauthenticated, Message: "invalid email or password"}
	ErrInvalidInput            = &Error{Code: CodeInvalidInput, Kind: ErrValidation, Message: "invalid input"}
	ErrInvalidCapacity         = &Error{Code: CodeInvalidCapacity, Kind: ErrValidation, Message: "capacity must be a positive integer"}
	ErrNameTaken               = &Error{Code: CodeNameTaken, Kind: ErrConflict, Message: "team name already exists"}
	ErrCodeGenerationExhausted = &Error{Code: CodeGenerationExhausted, Kind: ErrConflict, Message: "could not generate a unique team code"}
	ErrCodeNotFound            = &Error{Code: CodeCodeNotFound, Kind: ErrNotFound, Message: "invalid team code"}
	ErrTeamFull                = &Error{Code: CodeTeamFull, Kind: ErrConflict, Message: "team is full"}
	ErrAlreadyMember           = &Error{Code: CodeAlreadyMember, Kind: ErrConflict, Message: "already a member of this team"}
	ErrTeamNotFound            = &Error{Code: CodeTeamNotFound, Kind: ErrNotFound, Message: "team not found"}
	ErrPrincipalNotFound       = &Error{Code: CodePrincipalNotFound, Kind: ErrNotFound, Message: "user profile not found"}
	ErrBackendUnavailable      = &Error{Code: CodeBackendUnavailable, Kind: ErrUnavailable, Message: "backend unavailable, try again"}
	ErrSubmissionExists        = &Error{Code: CodeSubmissionExists, Kind: ErrConflict, Message: "a file with this name was already submitted"}
	ErrFileTooLarge            = &Error{Code: CodeFileTooLarge, Kind: ErrValidation, Message: "file exceeds the upload limit"}
	ErrNotInTeam               = &Error{Code: CodeNotInTeam, Kind: ErrConflict, Message: "join or create a team first"}
	ErrRoundLocked             = &Error{Code: CodeRoundLocked, Kind: ErrConflict, Message: "round is locked"}
)

// invalidInput returns ErrInvalidInput with a field-specific message.
func invalidInput(message string) *Error {
	e := *ErrInvalidInput
	e.Message = message
	return &e
}

// unavailable tags err as BACKEND_UNAVAILABLE.
func unavailable(err error) *Error {
	return ErrBackendUnavailable.Wrap(err)
}
