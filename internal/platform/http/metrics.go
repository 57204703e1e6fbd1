package http

import "github.com/prometheus/client_golang/prometheus"

// Contadores do ciclo de vida de depósitos, expostos no servidor de métricas
var (
	depositsSubmitted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "platform_deposits_submitted_total",
		Help: "depósitos manuais submetidos",
	})
	depositsReviewed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "platform_deposits_reviewed_total",
		Help: "depósitos revisados por decisão",
	}, []string{"status"})
)

func init() {
	prometheus.MustRegister(depositsSubmitted, depositsReviewed)
}
