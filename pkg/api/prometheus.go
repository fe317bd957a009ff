package api

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metric definitions with appropriate labels. Actor identities are
// deliberately excluded from labels to keep cardinality bounded.
var (
	promWorkflowsStarted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "guidedflow_workflows_started_total",
		Help: "Total number of filing sessions started, by workflow",
	}, []string{"workflow"})

	promWorkflowsCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "guidedflow_workflows_completed_total",
		Help: "Total number of filing sessions completed, by workflow",
	}, []string{"workflow"})

	promCompletionsRefused = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "guidedflow_completions_refused_total",
		Help: "Total number of completion attempts refused because required steps were incomplete, by workflow",
	}, []string{"workflow"})

	promWorkflowsRestarted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "guidedflow_workflows_restarted_total",
		Help: "Total number of filing sessions restarted, by workflow",
	}, []string{"workflow"})

	promStepsSaved = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "guidedflow_steps_saved_total",
		Help: "Total number of step saves, by workflow and form",
	}, []string{"workflow", "form"})

	promFieldsMapped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "guidedflow_fields_mapped_total",
		Help: "Total number of field values copied between steps, by workflow and target form",
	}, []string{"workflow", "form"})
)

// PrometheusObserver exports session lifecycle counters to the default
// Prometheus registry. Combine it with other observers via
// NewCompositeObserver.
type PrometheusObserver struct {
	NoopObserver
}

func (PrometheusObserver) OnWorkflowStarted(ctx context.Context, st State) {
	promWorkflowsStarted.WithLabelValues(st.WorkflowID).Inc()
}

func (PrometheusObserver) OnStepSaved(ctx context.Context, st State, step StepDefinition, submissionID string) {
	promStepsSaved.WithLabelValues(st.WorkflowID, step.FormID).Inc()
}

func (PrometheusObserver) OnFieldsMapped(ctx context.Context, st State, from, to StepDefinition, keys []string) {
	promFieldsMapped.WithLabelValues(st.WorkflowID, to.FormID).Add(float64(len(keys)))
}

func (PrometheusObserver) OnCompletionRefused(ctx context.Context, st State, missing []int) {
	promCompletionsRefused.WithLabelValues(st.WorkflowID).Inc()
}

func (PrometheusObserver) OnWorkflowCompleted(ctx context.Context, st State) {
	promWorkflowsCompleted.WithLabelValues(st.WorkflowID).Inc()
}

func (PrometheusObserver) OnWorkflowRestarted(ctx context.Context, st State) {
	promWorkflowsRestarted.WithLabelValues(st.WorkflowID).Inc()
}
