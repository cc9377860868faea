package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/viant/lore/schema"
)

// MutateOptions configures a mutation
type MutateOptions[T any] struct {
	// OnSuccess receives the decoded result, nil for empty responses
	OnSuccess func(result *T)
	OnError   func(err error)
	// Invalidates lists infinite query key prefixes reset after success
	Invalidates []string
}

// Query sends a GET descriptor and decodes the validated response body into T.
func Query[T any](ctx context.Context, c Interface, descriptor *Descriptor) (*T, error) {
	if descriptor.Method != "" && !strings.EqualFold(descriptor.Method, http.MethodGet) {
		return nil, fmt.Errorf("query requires GET, got %s", descriptor.Method)
	}
	resp, err := c.Do(ctx, descriptor)
	if err != nil {
		return nil, err
	}
	if resp.Empty() {
		return nil, &schema.SchemaError{Type: typeName[T](), Err: errors.New("empty response")}
	}
	return decode[T](resp.Body)
}

// Mutate sends a state changing descriptor, POST by default. Empty responses yield a nil result.
func Mutate[T any](ctx context.Context, c Interface, descriptor *Descriptor, options *MutateOptions[T]) (*T, error) {
	if options == nil {
		options = &MutateOptions[T]{}
	}
	if descriptor.Method == "" {
		copied := *descriptor
		copied.Method = http.MethodPost
		descriptor = &copied
	}
	ret, err := mutate[T](ctx, c, descriptor)
	if err != nil {
		if options.OnError != nil {
			options.OnError(err)
		}
		return nil, err
	}
	if len(options.Invalidates) > 0 {
		c.Invalidate(options.Invalidates...)
	}
	if options.OnSuccess != nil {
		options.OnSuccess(ret)
	}
	return ret, nil
}

func mutate[T any](ctx context.Context, c Interface, descriptor *Descriptor) (*T, error) {
	resp, err := c.Do(ctx, descriptor)
	if err != nil {
		return nil, err
	}
	if resp.Empty() {
		return nil, nil
	}
	return decode[T](resp.Body)
}

func decode[T any](data []byte) (*T, error) {
	ret := new(T)
	if err := json.Unmarshal(data, ret); err != nil {
		return nil, &schema.SchemaError{Type: typeName[T](), Err: err}
	}
	if err := schema.ValidateAs(typeName[T](), ret); err != nil {
		return nil, err
	}
	return ret, nil
}

func typeName[T any]() string {
	name := fmt.Sprintf("%T", new(T))
	name = strings.TrimPrefix(name, "*")
	if index := strings.LastIndexByte(name, '.'); index != -1 {
		name = name[index+1:]
	}
	return strings.ToLower(name)
}
