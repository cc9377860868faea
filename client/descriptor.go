package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"sort"
	"strings"
)

// Descriptor describes a single API request.
type Descriptor struct {
	Method     string
	Path       string
	PathParams map[string]string
	Query      url.Values
	Body       interface{}
	Form       *Form
}

// Form is a multipart/form-data request body.
type Form struct {
	Fields map[string]string
	Files  []FormFile
}

// FormFile is a file part of a Form.
type FormFile struct {
	Field       string
	Name        string
	ContentType string
	Data        []byte
}

// Get creates a GET descriptor
func Get(path string, params ...string) *Descriptor {
	return &Descriptor{Method: http.MethodGet, Path: path, PathParams: pairs(params)}
}

// Post creates a POST descriptor with a JSON body
func Post(path string, body interface{}, params ...string) *Descriptor {
	return &Descriptor{Method: http.MethodPost, Path: path, Body: body, PathParams: pairs(params)}
}

// Patch creates a PATCH descriptor with a JSON body
func Patch(path string, body interface{}, params ...string) *Descriptor {
	return &Descriptor{Method: http.MethodPatch, Path: path, Body: body, PathParams: pairs(params)}
}

// Delete creates a DELETE descriptor
func Delete(path string, params ...string) *Descriptor {
	return &Descriptor{Method: http.MethodDelete, Path: path, PathParams: pairs(params)}
}

func pairs(params []string) map[string]string {
	if len(params) == 0 {
		return nil
	}
	ret := make(map[string]string, len(params)/2)
	for i := 0; i+1 < len(params); i += 2 {
		ret[params[i]] = params[i+1]
	}
	return ret
}

// ExpandPath replaces {name} placeholders with escaped path parameters.
func (d *Descriptor) ExpandPath() (string, error) {
	var b strings.Builder
	path := d.Path
	for {
		start := strings.IndexByte(path, '{')
		if start == -1 {
			b.WriteString(path)
			return b.String(), nil
		}
		end := strings.IndexByte(path[start:], '}')
		if end == -1 {
			return "", fmt.Errorf("invalid path template %q", d.Path)
		}
		name := path[start+1 : start+end]
		value, ok := d.PathParams[name]
		if !ok || value == "" {
			return "", fmt.Errorf("unresolved path parameter %q in %s", name, d.Path)
		}
		b.WriteString(path[:start])
		b.WriteString(url.PathEscape(value))
		path = path[start+end+1:]
	}
}

// Key identifies the resource addressed by the descriptor: expanded path and encoded query.
func (d *Descriptor) Key() string {
	path, err := d.ExpandPath()
	if err != nil {
		path = d.Path
	}
	if len(d.Query) == 0 {
		return path
	}
	return path + "?" + d.Query.Encode()
}

// WithQuery returns a copy with query merged over the descriptor query
func (d *Descriptor) WithQuery(query url.Values) *Descriptor {
	ret := *d
	ret.Query = url.Values{}
	for k, v := range d.Query {
		ret.Query[k] = append([]string(nil), v...)
	}
	for k, v := range query {
		ret.Query[k] = append([]string(nil), v...)
	}
	return &ret
}

func (d *Descriptor) method() string {
	if d.Method == "" {
		return http.MethodGet
	}
	return strings.ToUpper(d.Method)
}

func (d *Descriptor) request(ctx context.Context, baseURL string) (*http.Request, error) {
	path, err := d.ExpandPath()
	if err != nil {
		return nil, err
	}
	URL, err := url.Parse(strings.TrimRight(baseURL, "/") + path)
	if err != nil {
		return nil, err
	}
	if len(d.Query) > 0 {
		URL.RawQuery = d.Query.Encode()
	}
	var body io.Reader
	contentType := ""
	switch {
	case d.Form != nil:
		data, formType, err := d.Form.encode()
		if err != nil {
			return nil, err
		}
		body, contentType = bytes.NewReader(data), formType
	case d.Body != nil:
		data, err := json.Marshal(d.Body)
		if err != nil {
			return nil, err
		}
		body, contentType = bytes.NewReader(data), "application/json"
	}
	req, err := http.NewRequestWithContext(ctx, d.method(), URL.String(), body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return req, nil
}

func (f *Form) encode() ([]byte, string, error) {
	buffer := &bytes.Buffer{}
	writer := multipart.NewWriter(buffer)
	names := make([]string, 0, len(f.Fields))
	for name := range f.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := writer.WriteField(name, f.Fields[name]); err != nil {
			return nil, "", err
		}
	}
	for _, file := range f.Files {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, file.Field, file.Name))
		contentType := file.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		header.Set("Content-Type", contentType)
		part, err := writer.CreatePart(header)
		if err != nil {
			return nil, "", err
		}
		if _, err = part.Write(file.Data); err != nil {
			return nil, "", err
		}
	}
	if err := writer.Close(); err != nil {
		return nil, "", err
	}
	return buffer.Bytes(), writer.FormDataContentType(), nil
}
