package completion

import (
	"fmt"
	"time"
)

// Error — не-2xx ответ completion-сервиса. Детали логируются,
// но наружу клиенту не протекают (см. обработку в транспортном слое).
type Error struct {
	Status int
	Body   string
}

func (e *Error) Error() string {
	return fmt.Sprintf("completion: upstream returned status %d: %s", e.Status, e.Body)
}

// TimeoutError — ответ не пришел за отведенное время.
type TimeoutError struct {
	Wait  time.Duration
	Cause error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("completion: no response within %v (cause: %v)", e.Wait, e.Cause)
}

func (e *TimeoutError) Unwrap() error { return e.Cause }
