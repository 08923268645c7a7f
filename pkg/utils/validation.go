package utils

// ValidationError is returned for input that must never reach a store.
// Handlers answer it with 400 and echo Field back to the client.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
