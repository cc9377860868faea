package client

import "context"

// Interface defines the request surface Query and Mutate are built on
type Interface interface {
	// Do sends a descriptor and returns a 2xx response or a typed error
	Do(ctx context.Context, descriptor *Descriptor) (*Response, error)

	// Invalidate resets cached infinite queries whose key starts with one of prefixes
	Invalidate(prefixes ...string)
}

// Ensure Client implements Interface
var _ Interface = (*Client)(nil)
