package fallback

import "fmt"

type panicError struct {
	value any
}

func (e *panicError) Error() string {
	return fmt.Sprintf("responder panicked: %v", e.value)
}
