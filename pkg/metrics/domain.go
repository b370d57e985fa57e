package metrics

import "github.com/prometheus/client_golang/prometheus"

const (
	TicketLineRecovered = "recovered"
	TicketLineSkipped   = "skipped"
)

// DomainMetrics counts order and store-assignment activity.
type DomainMetrics struct {
	ordersCreated        *prometheus.CounterVec
	ticketLines          *prometheus.CounterVec
	bootstrapCopies      *prometheus.CounterVec
	assignmentsReplaced  *prometheus.CounterVec
	malformedCupsRecords prometheus.Counter
}

// NewDomainMetrics registers the domain counters on the provided registerer.
func NewDomainMetrics(reg prometheus.Registerer) *DomainMetrics {
	if reg == nil {
		return &DomainMetrics{}
	}
	ordersCreated := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Orders persisted, by stored representation.",
	}, []string{"representation"})
	ticketLines := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_ticket_lines_total",
		Help: "Receipt lines seen while recovering items from legacy tickets.",
	}, []string{"outcome"})
	bootstrapCopies := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "store_flavor_bootstrap_copies_total",
		Help: "Times a derived store copied its base store's flavors.",
	}, []string{"store"})
	assignmentsReplaced := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "store_flavor_assignments_replaced_total",
		Help: "Full replacements of a store's active flavor set.",
	}, []string{"store"})
	malformed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "order_malformed_cups_total",
		Help: "Stored cups blobs that could not be decoded.",
	})
	reg.MustRegister(ordersCreated, ticketLines, bootstrapCopies, assignmentsReplaced, malformed)
	return &DomainMetrics{
		ordersCreated:        ordersCreated,
		ticketLines:          ticketLines,
		bootstrapCopies:      bootstrapCopies,
		assignmentsReplaced:  assignmentsReplaced,
		malformedCupsRecords: malformed,
	}
}

func (d *DomainMetrics) IncOrderCreated(representation string) {
	if d == nil || d.ordersCreated == nil {
		return
	}
	d.ordersCreated.WithLabelValues(normalizeLabel(representation)).Inc()
}

// AddTicketLines records how many receipt lines were recovered or skipped.
func (d *DomainMetrics) AddTicketLines(recovered, skipped int) {
	if d == nil || d.ticketLines == nil {
		return
	}
	if recovered > 0 {
		d.ticketLines.WithLabelValues(TicketLineRecovered).Add(float64(recovered))
	}
	if skipped > 0 {
		d.ticketLines.WithLabelValues(TicketLineSkipped).Add(float64(skipped))
	}
}

func (d *DomainMetrics) IncMalformedCups() {
	if d == nil || d.malformedCupsRecords == nil {
		return
	}
	d.malformedCupsRecords.Inc()
}

func (d *DomainMetrics) IncBootstrapCopy(store string) {
	if d == nil || d.bootstrapCopies == nil {
		return
	}
	d.bootstrapCopies.WithLabelValues(normalizeLabel(store)).Inc()
}

func (d *DomainMetrics) IncAssignmentsReplaced(store string) {
	if d == nil || d.assignmentsReplaced == nil {
		return
	}
	d.assignmentsReplaced.WithLabelValues(normalizeLabel(store)).Inc()
}
