package transport

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts outgoing requests and refresh outcomes; a nil *Metrics is a no-op.
type Metrics struct {
	Requests  *prometheus.CounterVec
	Refreshes *prometheus.CounterVec
}

// NewMetrics creates collectors and registers them with registerer when not nil
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	ret := &Metrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lore",
			Subsystem: "client",
			Name:      "requests_total",
			Help:      "Outgoing API requests by response status code.",
		}, []string{"code"}),
		Refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lore",
			Subsystem: "client",
			Name:      "token_refresh_total",
			Help:      "Token refresh attempts by outcome.",
		}, []string{"outcome"}),
	}
	if registerer != nil {
		registerer.MustRegister(ret.Requests, ret.Refreshes)
	}
	return ret
}

func (m *Metrics) request(resp *http.Response, err error) {
	if m == nil {
		return
	}
	code := "error"
	if err == nil && resp != nil {
		code = strconv.Itoa(resp.StatusCode)
	}
	m.Requests.WithLabelValues(code).Inc()
}

func (m *Metrics) refresh(outcome string) {
	if m == nil {
		return
	}
	m.Refreshes.WithLabelValues(outcome).Inc()
}
