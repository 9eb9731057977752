// Package metrics holds the Prometheus collectors for grant processing and
// token lifecycle outcomes.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	// grantsTotal counts token endpoint outcomes per grant type. The
	// result label is "success" or the RFC 6749 error code.
	grantsTotal *prometheus.CounterVec

	// codesIssued counts authorization codes minted.
	codesIssued prometheus.Counter

	// revocationsTotal counts revocations per token type.
	revocationsTotal *prometheus.CounterVec

	// introspectionsTotal counts introspection responses by activeness.
	introspectionsTotal *prometheus.CounterVec
}

// New builds and registers the collectors. Re-registration (tests sharing a
// registry) is tolerated.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		grantsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "oauthd_grants_total",
			Help: "Token endpoint outcomes per grant type and result.",
		}, []string{"grant_type", "result"}),
		codesIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "oauthd_authorization_codes_issued_total",
			Help: "Authorization codes minted.",
		}),
		revocationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "oauthd_revocations_total",
			Help: "Tokens revoked through the revocation endpoint.",
		}, []string{"token_type"}),
		introspectionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "oauthd_introspections_total",
			Help: "Introspection responses by activeness.",
		}, []string{"active"}),
	}

	register(reg, m.grantsTotal)
	register(reg, m.codesIssued)
	register(reg, m.revocationsTotal)
	register(reg, m.introspectionsTotal)
	return m
}

func register(reg prometheus.Registerer, c prometheus.Collector) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if err := reg.Register(c); err != nil {
		if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return
		}
		panic(err)
	}
}

// RecordGrant notes a token endpoint outcome. result is "success" or the
// RFC 6749 error code. Nil receivers are no-ops so services without metrics
// wired (tests) need no guards.
func (m *Metrics) RecordGrant(grantType, result string) {
	if m == nil {
		return
	}
	m.grantsTotal.WithLabelValues(grantType, result).Inc()
}

func (m *Metrics) RecordCodeIssued() {
	if m == nil {
		return
	}
	m.codesIssued.Inc()
}

func (m *Metrics) RecordRevocation(tokenType string) {
	if m == nil {
		return
	}
	m.revocationsTotal.WithLabelValues(tokenType).Inc()
}

func (m *Metrics) RecordIntrospection(active bool) {
	if m == nil {
		return
	}
	label := "false"
	if active {
		label = "true"
	}
	m.introspectionsTotal.WithLabelValues(label).Inc()
}
