package transport

import (
	"bytes"
	"io"
	"net/http"
	"strings"
)

// readBody buffers and closes the request body so the request can be replayed.
func readBody(req *http.Request) ([]byte, error) {
	if req.Body == nil || req.Body == http.NoBody {
		return nil, nil
	}
	defer req.Body.Close()
	return io.ReadAll(req.Body)
}

func clone(r *http.Request, body []byte) *http.Request {
	cloned := r.Clone(r.Context())
	if body == nil {
		cloned.Body = nil
		return cloned
	}
	cloned.Body = io.NopCloser(bytes.NewReader(body))
	cloned.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(body)), nil
	}
	cloned.ContentLength = int64(len(body))
	return cloned
}

func closeBody(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}

func (r *RoundTripper) isAuthEndpoint(path string) bool {
	for _, candidate := range r.authPaths {
		if strings.Contains(path, candidate) {
			return true
		}
	}
	return false
}
