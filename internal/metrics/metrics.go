// metrics — счётчики Prometheus сервиса; отдаются через /metrics
// служебного HTTP-сервера.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Исходы погашения для метки outcome.
const (
	OutcomeAllowed     = "allowed"
	OutcomeNotFound    = "not_found"
	OutcomeExpired     = "expired"
	OutcomeClientError = "client_error"
	OutcomeError       = "error"
)

var (
	// LinksIssued — успешно выпущенные ссылки.
	LinksIssued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "links_issued_total",
		Help: "Number of single-use links issued.",
	})

	// Redemptions — попытки погашения по исходам.
	Redemptions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "link_redemptions_total",
		Help: "Number of link redemption attempts by outcome.",
	}, []string{"outcome"})
)
