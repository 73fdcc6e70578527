package errors

import (
	"fmt"
	"net/http"
)

// Code represents an error code with HTTP status and message
type Code struct {
	Code    int    // Business error code
	Status  int    // HTTP status code
	Message string // Error message
}

// Error codes for different modules
const (
	// Success
	Success = 0

	// Common errors (1000-1999)
	ErrInternalServer  = 1000
	ErrInvalidParams   = 1001
	ErrNotFound        = 1002
	ErrUnauthorized    = 1003
	ErrForbidden       = 1004
	ErrConflict        = 1005
	ErrTooManyRequests = 1006
	ErrBadRequest      = 1007
	ErrServiceUnavail  = 1008

	// Auth errors (2000-2999)
	ErrAuthInvalidCredentials = 2000
	ErrAuthUserNotFound       = 2001
	ErrAuthEmailExists        = 2002
	ErrAuthInvalidToken       = 2003
	ErrAuthTokenExpired       = 2004
	ErrAuthWeakPassword       = 2005
	ErrAuthInvalidEmail       = 2006

	// Household errors (3000-3999)
	ErrHouseholdNotFound     = 3000
	ErrHouseholdNoMembership = 3001
	ErrMembershipRevoked     = 3002
	ErrHouseholdNotOwner     = 3003
	ErrInviteExists          = 3004

	// Inventory errors (4000-4999)
	ErrItemNotFound      = 4000
	ErrLocationNotFound  = 4001
	ErrLocationNotEmpty  = 4002
	ErrItemInvalidInput  = 4003
	ErrPhotoUploadFailed = 4004

	// Search errors (5000-5999)
	ErrSearchInvalidQuery = 5000
	ErrSearchFailed       = 5001

	// Export errors (6000-6999)
	ErrExportJobNotFound = 6000
	ErrExportNotReady    = 6001
	ErrExportFailed      = 6002
)

// codeMap maps error codes to their details
var codeMap = map[int]Code{
	Success: {Success, http.StatusOK, "Success"},

	// Common errors
	ErrInternalServer:  {ErrInternalServer, http.StatusInternalServerError, "Internal server error"},
	ErrInvalidParams:   {ErrInvalidParams, http.StatusBadRequest, "Invalid parameters"},
	ErrNotFound:        {ErrNotFound, http.StatusNotFound, "Resource not found"},
	ErrUnauthorized:    {ErrUnauthorized, http.StatusUnauthorized, "Unauthorized"},
	ErrForbidden:       {ErrForbidden, http.StatusForbidden, "Forbidden"},
	ErrConflict:        {ErrConflict, http.StatusConflict, "Resource conflict"},
	ErrTooManyRequests: {ErrTooManyRequests, http.StatusTooManyRequests, "Too many requests"},
	ErrBadRequest:      {ErrBadRequest, http.StatusBadRequest, "Bad request"},
	ErrServiceUnavail:  {ErrServiceUnavail, http.StatusServiceUnavailable, "Service unavailable"},

	// Auth errors
	ErrAuthInvalidCredentials: {ErrAuthInvalidCredentials, http.StatusUnauthorized, "Invalid email or password"},
	ErrAuthUserNotFound:       {ErrAuthUserNotFound, http.StatusNotFound, "User not found"},
	ErrAuthEmailExists:        {ErrAuthEmailExists, http.StatusConflict, "Email already exists"},
	ErrAuthInvalidToken:       {ErrAuthInvalidToken, http.StatusUnauthorized, "Invalid or expired token"},
	ErrAuthTokenExpired:       {ErrAuthTokenExpired, http.StatusUnauthorized, "Token expired"},
	ErrAuthWeakPassword:       {ErrAuthWeakPassword, http.StatusBadRequest, "Password is too weak"},
	ErrAuthInvalidEmail:       {ErrAuthInvalidEmail, http.StatusBadRequest, "Invalid email format"},

	// Household errors. No-membership and revoked map to 403, not 401
	// (missing identity) or 404 (absent within an authorized household).
	ErrHouseholdNotFound:     {ErrHouseholdNotFound, http.StatusNotFound, "Household not found"},
	ErrHouseholdNoMembership: {ErrHouseholdNoMembership, http.StatusForbidden, "No active household membership"},
	ErrMembershipRevoked:     {ErrMembershipRevoked, http.StatusForbidden, "Household membership has been revoked"},
	ErrHouseholdNotOwner:     {ErrHouseholdNotOwner, http.StatusForbidden, "Requires household owner role"},
	ErrInviteExists:          {ErrInviteExists, http.StatusConflict, "Invitation already sent"},

	// Inventory errors
	ErrItemNotFound:      {ErrItemNotFound, http.StatusNotFound, "Item not found"},
	ErrLocationNotFound:  {ErrLocationNotFound, http.StatusNotFound, "Location not found"},
	ErrLocationNotEmpty:  {ErrLocationNotEmpty, http.StatusConflict, "Location still contains items"},
	ErrItemInvalidInput:  {ErrItemInvalidInput, http.StatusBadRequest, "Invalid item input"},
	ErrPhotoUploadFailed: {ErrPhotoUploadFailed, http.StatusInternalServerError, "Photo upload failed"},

	// Search errors
	ErrSearchInvalidQuery: {ErrSearchInvalidQuery, http.StatusBadRequest, "Invalid search query"},
	ErrSearchFailed:       {ErrSearchFailed, http.StatusInternalServerError, "Search failed"},

	// Export errors
	ErrExportJobNotFound: {ErrExportJobNotFound, http.StatusNotFound, "Export job not found"},
	ErrExportNotReady:    {ErrExportNotReady, http.StatusConflict, "Export job is not finished"},
	ErrExportFailed:      {ErrExportFailed, http.StatusInternalServerError, "Export failed"},
}

// GetCode returns the Code for a given error code
func GetCode(code int) Code {
	if c, ok := codeMap[code]; ok {
		return c
	}
	return codeMap[ErrInternalServer]
}

// GetHTTPStatus returns HTTP status for a given error code
func GetHTTPStatus(code int) int {
	return GetCode(code).Status
}

// GetMessage returns the message for a given error code
func GetMessage(code int) string {
	return GetCode(code).Message
}

// IsClientError checks if the code represents a client error (4xx)
func IsClientError(code int) bool {
	status := GetHTTPStatus(code)
	return status >= 400 && status < 500
}

// IsServerError checks if the code represents a server error (5xx)
func IsServerError(code int) bool {
	return GetHTTPStatus(code) >= 500
}

// FormatError formats an error message with optional details
func FormatError(code int, details ...string) string {
	msg := GetMessage(code)
	if len(details) > 0 && details[0] != "" {
		return fmt.Sprintf("%s: %s", msg, details[0])
	}
	return msg
}
