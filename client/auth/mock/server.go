package mock

import "net/http/httptest"

// HTTPTestService runs a Service behind an httptest server.
type HTTPTestService struct {
	*Service
	Server *httptest.Server
	URL    string
}

// NewHTTPTestService starts a backend listening on a loopback address
func NewHTTPTestService() *HTTPTestService {
	service := NewService()
	server := &HTTPTestService{Service: service}
	server.Server = httptest.NewServer(service.Handler())
	server.URL = server.Server.URL
	return server
}

func (s *HTTPTestService) Close() {
	if s.Server != nil {
		s.Server.Close()
	}
	s.Server = nil
}
