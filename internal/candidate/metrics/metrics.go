package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	UpsertsTotal          *prometheus.CounterVec
	ApprovalResetsTotal   prometheus.Counter
	ApprovalsRemovedTotal prometheus.Counter
	VersionConflictsTotal prometheus.Counter
	StatusUpdatesTotal    *prometheus.CounterVec
	NotesCreatedTotal     prometheus.Counter
	NotesDeletedTotal     prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		UpsertsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "pubcred_candidate_upserts_total",
			Help: "Total candidate upserts processed, by outcome",
		}, []string{"outcome"}),
		ApprovalResetsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pubcred_approval_resets_total",
			Help: "Total approvals forced back to pending by upstream changes",
		}),
		ApprovalsRemovedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pubcred_approvals_removed_total",
			Help: "Total approvals destroyed because the institution lost its contribution",
		}),
		VersionConflictsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pubcred_version_conflicts_total",
			Help: "Total optimistic-concurrency conflicts observed (including retried ones)",
		}),
		StatusUpdatesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "pubcred_approval_status_updates_total",
			Help: "Total approval status updates, by target status",
		}, []string{"status"}),
		NotesCreatedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pubcred_notes_created_total",
			Help: "Total notes created on candidates",
		}),
		NotesDeletedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pubcred_notes_deleted_total",
			Help: "Total notes deleted from candidates",
		}),
	}
}

func (m *Metrics) IncrementUpserts(outcome string) {
	if m == nil {
		return
	}
	m.UpsertsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) AddApprovalResets(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.ApprovalResetsTotal.Add(float64(n))
}

func (m *Metrics) AddApprovalsRemoved(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.ApprovalsRemovedTotal.Add(float64(n))
}

func (m *Metrics) IncrementVersionConflicts() {
	if m == nil {
		return
	}
	m.VersionConflictsTotal.Inc()
}

func (m *Metrics) IncrementStatusUpdates(status string) {
	if m == nil {
		return
	}
	m.StatusUpdatesTotal.WithLabelValues(status).Inc()
}

func (m *Metrics) IncrementNotesCreated() {
	if m == nil {
		return
	}
	m.NotesCreatedTotal.Inc()
}

func (m *Metrics) IncrementNotesDeleted() {
	if m == nil {
		return
	}
	m.NotesDeletedTotal.Inc()
}
