package helper

import "fmt"

// NewError wraps an error with the action that failed.
// The action should be a short lowercase description, e.g. "insert chunk".
func NewError(action string, err error) error {
	return fmt.Errorf("error in %s: %w", action, err)
}
