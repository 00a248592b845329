package shared

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound         = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists    = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput     = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrUnauthorized     = NewDomainError("UNAUTHORIZED", "Not authorized to perform this action")
	ErrPermissionDenied = NewDomainError("PERMISSION_DENIED", "Permission denied for this action")
	ErrNotReady         = NewDomainError("NOT_READY", "Access data has not finished loading")
)

// NewValidationError creates a VALIDATION_ERROR with a specific message
func NewValidationError(message string) *DomainError {
	return NewDomainError("VALIDATION_ERROR", message)
}

// NewPermissionError creates a PERMISSION_DENIED error with a specific message
func NewPermissionError(message string) *DomainError {
	return NewDomainError("PERMISSION_DENIED", message)
}

// NewNotFoundError creates a NOT_FOUND error with a specific message
func NewNotFoundError(message string) *DomainError {
	return NewDomainError("NOT_FOUND", message)
}

// NewAllocationError creates an ALLOCATION_ERROR with a specific message.
// Raised when a reference sequence cannot be determined for a letter.
func NewAllocationError(message string) *DomainError {
	return NewDomainError("ALLOCATION_ERROR", message)
}

// NewStoreError wraps a collaborator failure (record store, blob store)
// as a STORE_ERROR so handlers can map it uniformly.
func NewStoreError(message string) *DomainError {
	return NewDomainError("STORE_ERROR", message)
}
