package tracker

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
)

// ErrPageLimit is returned by a search that was cut off at the page cap.
var ErrPageLimit = errors.New("page limit reached")

// ServiceError is a failed tracker call.
type ServiceError struct {
	Op       string
	Status   int
	Messages []string
}

func (e *ServiceError) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	if e.Status != 0 {
		fmt.Fprintf(&b, ": %d %s", e.Status, http.StatusText(e.Status))
	}
	if len(e.Messages) > 0 {
		b.WriteString(": ")
		b.WriteString(strings.Join(e.Messages, "; "))
	}
	return b.String()
}

// StatusCode returns the HTTP status of the failed call.
func (e *ServiceError) StatusCode() int {
	return e.Status
}

// IsNotFound reports whether err is a 404 from the tracker.
func IsNotFound(err error) bool {
	var svcErr *ServiceError
	return errors.As(err, &svcErr) && svcErr.Status == http.StatusNotFound
}

// IsUnauthorized reports whether the tracker rejected the credentials.
func IsUnauthorized(err error) bool {
	var svcErr *ServiceError
	return errors.As(err, &svcErr) && (svcErr.Status == http.StatusUnauthorized || svcErr.Status == http.StatusForbidden)
}

type errorBody struct {
	ErrorMessages []string          `json:"errorMessages"`
	Errors        map[string]string `json:"errors"`
}

// newServiceError builds a ServiceError from an error response body. Field
// errors are listed after general messages, sorted by field.
func newServiceError(op string, status int, body []byte) *ServiceError {
	svcErr := &ServiceError{Op: op, Status: status}
	var parsed errorBody
	if err := json.Unmarshal(body, &parsed); err != nil {
		if text := strings.TrimSpace(string(body)); text != "" && len(text) < 512 {
			svcErr.Messages = []string{text}
		}
		return svcErr
	}
	svcErr.Messages = append(svcErr.Messages, parsed.ErrorMessages...)
	fields := make([]string, 0, len(parsed.Errors))
	for field := range parsed.Errors {
		fields = append(fields, field)
	}
	slices.Sort(fields)
	for _, field := range fields {
		svcErr.Messages = append(svcErr.Messages, field+": "+parsed.Errors[field])
	}
	return svcErr
}
