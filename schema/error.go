package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// ErrAuthExpired reports a missing or rejected refresh token; the session is over.
var ErrAuthExpired = errors.New("session expired")

// StorageError reports a token store read, write or delete failure.
type StorageError struct {
	Op  string
	Key string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("token store %s %s: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// NewStorageError wraps err, returns nil when err is nil
func NewStorageError(op, key string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Key: key, Err: err}
}

// NetworkError reports a request that never produced a response.
type NetworkError struct {
	Method string
	URL    string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// FetchError reports a failed call: a non-2xx status or an underlying error.
type FetchError struct {
	Method string
	URL    string
	Status int
	Body   []byte
	Err    error
}

func (e *FetchError) Error() string {
	var b strings.Builder
	b.WriteString("fetch")
	if e.Method != "" {
		b.WriteString(" " + e.Method + " " + e.URL)
	}
	if e.Status != 0 {
		fmt.Fprintf(&b, ": status %d %s", e.Status, http.StatusText(e.Status))
	}
	if e.Err != nil {
		b.WriteString(": " + e.Err.Error())
	}
	return b.String()
}

func (e *FetchError) Unwrap() error { return e.Err }

// ValidationError carries per-field messages from a rejected request body.
type ValidationError struct {
	Status int
	Fields map[string][]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(e.Fields[k], " "))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Field returns messages for the named field
func (e *ValidationError) Field(name string) []string {
	return e.Fields[name]
}

// ParseValidationError decodes a `{field: [messages]}` body, returns nil if body has another shape.
func ParseValidationError(status int, body []byte) *ValidationError {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil || len(raw) == 0 {
		return nil
	}
	ret := &ValidationError{Status: status, Fields: map[string][]string{}}
	for field, value := range raw {
		var messages []string
		if err := json.Unmarshal(value, &messages); err == nil {
			ret.Fields[field] = messages
			continue
		}
		var message string
		if err := json.Unmarshal(value, &message); err == nil {
			ret.Fields[field] = []string{message}
			continue
		}
		return nil
	}
	return ret
}

// SchemaError reports a response body that does not match the expected shape.
type SchemaError struct {
	Type  string
	Field string
	Err   error
}

func (e *SchemaError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid %s: field %s: %v", e.Type, e.Field, e.Err)
	}
	return fmt.Sprintf("invalid %s: %v", e.Type, e.Err)
}

func (e *SchemaError) Unwrap() error { return e.Err }

// IsAuthExpired reports whether err ends the current session
func IsAuthExpired(err error) bool {
	return errors.Is(err, ErrAuthExpired)
}
