// Package metrics collects and exposes Prometheus metrics for the auction service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is the metrics surface consumed by the service layer
type Recorder interface {
	RecordAuthAttempt(result string)
	RecordTokenValidation(result string)
	RecordBid(result string)
	RecordAuctionCreated()
	RecordAuctionClosed(sold bool)
}

// Result labels
const (
	ResultSuccess  = "success"
	ResultFailure  = "failure"
	ResultAccepted = "accepted"
	ResultRejected = "rejected"
	ResultSelfBid  = "self_bid"
)

// Collector is the Prometheus implementation of Recorder
type Collector struct {
	authAttempts     *prometheus.CounterVec
	tokenValidations *prometheus.CounterVec
	bids             *prometheus.CounterVec
	auctionsCreated  prometheus.Counter
	auctionsClosed   *prometheus.CounterVec
	openAuctions     prometheus.Gauge
}

// NewCollector creates a Collector and registers it with reg
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		authAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auctioneer_auth_attempts_total",
			Help: "Challenge signature verifications by result",
		}, []string{"result"}),
		tokenValidations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auctioneer_token_validations_total",
			Help: "Session token validations by result",
		}, []string{"result"}),
		bids: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auctioneer_bids_total",
			Help: "Bids by result",
		}, []string{"result"}),
		auctionsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "auctioneer_auctions_created_total",
			Help: "Auctions created",
		}),
		auctionsClosed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auctioneer_auctions_closed_total",
			Help: "Auctions closed by outcome",
		}, []string{"outcome"}),
		openAuctions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "auctioneer_open_auctions",
			Help: "Auctions currently open",
		}),
	}

	reg.MustRegister(
		c.authAttempts,
		c.tokenValidations,
		c.bids,
		c.auctionsCreated,
		c.auctionsClosed,
		c.openAuctions,
	)

	return c
}

func (c *Collector) RecordAuthAttempt(result string) {
	c.authAttempts.WithLabelValues(result).Inc()
}

func (c *Collector) RecordTokenValidation(result string) {
	c.tokenValidations.WithLabelValues(result).Inc()
}

func (c *Collector) RecordBid(result string) {
	c.bids.WithLabelValues(result).Inc()
}

func (c *Collector) RecordAuctionCreated() {
	c.auctionsCreated.Inc()
	c.openAuctions.Inc()
}

func (c *Collector) RecordAuctionClosed(sold bool) {
	outcome := "unsold"
	if sold {
		outcome = "sold"
	}
	c.auctionsClosed.WithLabelValues(outcome).Inc()
	c.openAuctions.Dec()
}

// Handler returns the HTTP handler serving the metrics in gatherer
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Noop discards all metrics
type Noop struct{}

func (Noop) RecordAuthAttempt(string)     {}
func (Noop) RecordTokenValidation(string) {}
func (Noop) RecordBid(string)             {}
func (Noop) RecordAuctionCreated()        {}
func (Noop) RecordAuctionClosed(bool)     {}
