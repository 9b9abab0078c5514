package obs

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// PricingCalcTotal counts pricing engine invocations by pricing type and outcome.
	PricingCalcTotal *prometheus.CounterVec
	// LegacyCalcTotal counts legacy three-point calculator invocations by outcome.
	LegacyCalcTotal *prometheus.CounterVec
	// QuoteCreatedTotal counts persisted quotes by status.
	QuoteCreatedTotal *prometheus.CounterVec
	// InvoiceIssuedTotal counts issued invoices by status.
	InvoiceIssuedTotal *prometheus.CounterVec
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		PricingCalcTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pricing_calculations_total",
			Help:      "Count of pricing engine line-item calculations.",
		}, []string{"pricing_type", "result"})
		LegacyCalcTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "legacy_calculations_total",
			Help:      "Count of legacy sliding-scale job cost calculations.",
		}, []string{"result"})
		QuoteCreatedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quotes_created_total",
			Help:      "Count of quotes persisted by status.",
		}, []string{"status"})
		InvoiceIssuedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invoices_issued_total",
			Help:      "Count of invoices issued by status.",
		}, []string{"status"})

		mustRegisterCollector(reg, PricingCalcTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				PricingCalcTotal = v
			}
		})
		mustRegisterCollector(reg, LegacyCalcTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				LegacyCalcTotal = v
			}
		})
		mustRegisterCollector(reg, QuoteCreatedTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				QuoteCreatedTotal = v
			}
		})
		mustRegisterCollector(reg, InvoiceIssuedTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				InvoiceIssuedTotal = v
			}
		})
	})
}

func mustRegisterCollector(reg prometheus.Registerer, collector prometheus.Collector, reuse func(prometheus.Collector)) {
	if err := reg.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if reuse != nil {
				reuse(are.ExistingCollector)
			}
			return
		}
		panic(fmt.Errorf("register domain metric: %w", err))
	}
}
