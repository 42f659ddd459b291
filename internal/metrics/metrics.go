// Package metrics records resolver outcomes as Prometheus metrics.
//
// speakertag runs as a batch command, so metrics are not served over HTTP.
// A Recorder owns a private registry of last_run_* gauges and writes it in
// the node_exporter textfile format after each run.
package metrics

import (
	"fmt"
	"sort"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"speakertag/internal/speakermatch"
)

const namespace = "speakertag"

// Recorder holds gauges describing the most recent resolution run. Each
// Observe replaces the previous values, so a textfile always reflects one run
// and the scraper keeps the history.
type Recorder struct {
	registry *prometheus.Registry

	assignments   *prometheus.GaugeVec
	review        prometheus.Gauge
	meanConf      prometheus.Gauge
	minConf       prometheus.Gauge
	speakers      prometheus.Gauge
	lastRun       prometheus.Gauge
	exact         prometheus.Gauge
	duplicateAuto prometheus.Gauge
}

var methods = []speakermatch.Method{
	speakermatch.MethodEmbedding,
	speakermatch.MethodNameBased,
	speakermatch.MethodScoreBased,
	speakermatch.MethodElimination,
	speakermatch.MethodNone,
}

func lastRunGauge(name, help string) prometheus.Gauge {
	return prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "last_run_" + name,
		Help:      help,
	})
}

// NewRecorder returns a Recorder with every collector registered.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		assignments: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_assignments",
			Help:      "Speaker assignments by match method in the most recent run.",
		}, []string{"method"}),
		review:        lastRunGauge("review_entries", "Assignments flagged for manual review in the most recent run."),
		meanConf:      lastRunGauge("mean_confidence", "Mean assignment confidence in the most recent run."),
		minConf:       lastRunGauge("min_confidence", "Lowest assignment confidence in the most recent run."),
		speakers:      lastRunGauge("speakers", "Speakers resolved by the most recent run."),
		lastRun:       lastRunGauge("timestamp_seconds", "Unix time of the most recent run."),
		exact:         lastRunGauge("exact_elimination", "1 when exact-count elimination applied in the most recent run."),
		duplicateAuto: lastRunGauge("duplicate_auto_matches", "Auto-matched names shared by several speakers in the most recent run."),
	}
	r.resetAssignments()
	r.registry.MustRegister(r.assignments, r.review, r.meanConf, r.minConf, r.speakers, r.lastRun, r.exact, r.duplicateAuto)
	return r
}

func (r *Recorder) resetAssignments() {
	r.assignments.Reset()
	for _, method := range methods {
		r.assignments.WithLabelValues(method.String()).Set(0)
	}
}

// Observe replaces the recorded values with those of result.
func (r *Recorder) Observe(result speakermatch.Result, at time.Time) {
	r.resetAssignments()
	r.speakers.Set(float64(len(result.Mappings)))
	r.lastRun.Set(float64(at.Unix()))
	r.duplicateAuto.Set(float64(result.Stages.DuplicateAutoMatches))
	if result.Stages.ExactElimination {
		r.exact.Set(1)
	} else {
		r.exact.Set(0)
	}

	review := 0
	sum, lowest := 0.0, 0.0
	for i, entry := range sortedEntries(result) {
		r.assignments.WithLabelValues(entry.MatchMethod.String()).Inc()
		sum += entry.Confidence
		if i == 0 || entry.Confidence < lowest {
			lowest = entry.Confidence
		}
		if entry.NeedsReview {
			review++
		}
	}
	r.review.Set(float64(review))
	if n := len(result.Mappings); n > 0 {
		r.meanConf.Set(sum / float64(n))
	} else {
		r.meanConf.Set(0)
	}
	r.minConf.Set(lowest)
}

// sortedEntries fixes the summation order so the mean does not depend on
// map iteration.
func sortedEntries(result speakermatch.Result) []speakermatch.Entry {
	labels := make([]string, 0, len(result.Mappings))
	for label := range result.Mappings {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	entries := make([]speakermatch.Entry, 0, len(labels))
	for _, label := range labels {
		entries = append(entries, result.Mappings[label])
	}
	return entries
}

// Gatherer exposes the registry for callers that serve or inspect it.
func (r *Recorder) Gatherer() prometheus.Gatherer {
	return r.registry
}

// WriteTextfile atomically writes the registry to path.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
