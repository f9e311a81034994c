package handlers

// Common error message constants shared across handlers
const (
	ErrMsgInvalidRequestBody    = "Invalid request body"
	ErrMsgUnauthorized          = "Unauthorized"
	ErrMsgInvalidCredentials    = "Invalid credentials"
	ErrMsgAccountInactive       = "Account is inactive"
	ErrMsgRegistrationDisabled  = "Registration is disabled"
	ErrMsgClassifierUnavailable = "Prediction service unavailable, please try again"
	ErrMsgInternal              = "Internal server error"
	ErrMsgInvalidLookupType     = "type must be 'states' or 'scam_types'"
)

// Lookup catalog names accepted by GET /lookup
const (
	LookupTypeStates    = "states"
	LookupTypeScamTypes = "scam_types"
)
