package rotation

import (
	"sort"

	"postforge/internal/core"
)

// anglesByIntent maps each search intent to its ordered list of content
// angles. An angle is consumed at most once per topic; unknown intents fall
// back to the informational list.
var anglesByIntent = map[core.SearchIntent][]string{
	core.IntentInformational: {
		"beginner-guide",
		"local-expert",
		"cost-breakdown",
		"insider-tips",
		"seasonal-guide",
		"family-lens",
		"history-walk",
		"data-deep-dive",
		"myth-busting",
		"day-in-the-life",
	},
	core.IntentTransactional: {
		"service-comparison",
		"pricing-guide",
		"hiring-checklist",
		"before-you-commit",
		"vendor-vetting",
	},
	core.IntentNavigational: {
		"neighborhood-orientation",
		"getting-around",
		"directory-tour",
	},
	core.IntentCommercial: {
		"best-of-roundup",
		"head-to-head",
		"value-analysis",
		"buyer-profiles",
	},
}

// AnglesFor returns the full ordered angle list for an intent, falling back
// to the informational list when the intent is unrecognized.
func AnglesFor(intent core.SearchIntent) []string {
	if angles, ok := anglesByIntent[intent]; ok {
		return angles
	}
	return anglesByIntent[core.IntentInformational]
}

// AngleTracker records which content angles have been consumed per topic.
type AngleTracker struct {
	used map[string]map[string]bool
}

// NewAngleTracker creates an empty tracker.
func NewAngleTracker() *AngleTracker {
	return &AngleTracker{used: make(map[string]map[string]bool)}
}

// AvailableAngles returns the intent's angle list minus any angle already
// registered for the topic, preserving list order. An empty result means
// the topic is exhausted and needs a new strategy, not another attempt.
func (t *AngleTracker) AvailableAngles(topic string, intent core.SearchIntent) []string {
	var available []string
	for _, angle := range AnglesFor(intent) {
		if !t.used[topic][angle] {
			available = append(available, angle)
		}
	}
	return available
}

// RegisterUsed marks an angle consumed for a topic. Repeated registration
// is a no-op.
func (t *AngleTracker) RegisterUsed(topic, angle string) {
	if t.used[topic] == nil {
		t.used[topic] = make(map[string]bool)
	}
	t.used[topic][angle] = true
}

// Snapshot returns the used-angle state as sorted slices, suitable for
// persistence.
func (t *AngleTracker) Snapshot() map[string][]string {
	snapshot := make(map[string][]string, len(t.used))
	for topic, angles := range t.used {
		list := make([]string, 0, len(angles))
		for angle := range angles {
			list = append(list, angle)
		}
		sort.Strings(list)
		snapshot[topic] = list
	}
	return snapshot
}

// Restore replaces the tracker state with a previously persisted snapshot.
func (t *AngleTracker) Restore(snapshot map[string][]string) {
	t.used = make(map[string]map[string]bool, len(snapshot))
	for topic, angles := range snapshot {
		t.used[topic] = make(map[string]bool, len(angles))
		for _, angle := range angles {
			t.used[topic][angle] = true
		}
	}
}
