package paging

import (
	"encoding/json"
	"fmt"

	"github.com/viant/lore/schema"
)

// Envelope is a single page of a paginated list response.
type Envelope[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

type envelopeShape[T any] struct {
	Count    *int    `json:"count" validate:"required"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results" validate:"required,dive"`
}

// Decode parses and validates a page envelope.
func Decode[T any](data []byte) (*Envelope[T], error) {
	shape := &envelopeShape[T]{}
	if err := json.Unmarshal(data, shape); err != nil {
		return nil, &schema.SchemaError{Type: "page", Err: err}
	}
	if err := schema.ValidateAs("page", shape); err != nil {
		return nil, err
	}
	return &Envelope[T]{Count: *shape.Count, Next: shape.Next, Previous: shape.Previous, Results: shape.Results}, nil
}

func (e *Envelope[T]) String() string {
	next := "<nil>"
	if e.Next != nil {
		next = *e.Next
	}
	return fmt.Sprintf("page(count=%d, results=%d, next=%s)", e.Count, len(e.Results), next)
}
