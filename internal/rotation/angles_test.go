package rotation

import (
	"testing"

	"postforge/internal/core"
)

func TestAvailableAnglesExhaustion(t *testing.T) {
	tracker := NewAngleTracker()
	topic := "park-slope"

	all := AnglesFor(core.IntentInformational)
	if len(all) != 10 {
		t.Fatalf("informational angle list has %d entries, want 10", len(all))
	}

	for i, angle := range all {
		available := tracker.AvailableAngles(topic, core.IntentInformational)
		if len(available) != len(all)-i {
			t.Fatalf("after %d registrations, %d angles available, want %d", i, len(available), len(all)-i)
		}
		tracker.RegisterUsed(topic, angle)
	}

	if remaining := tracker.AvailableAngles(topic, core.IntentInformational); len(remaining) != 0 {
		t.Errorf("exhausted topic still has angles: %v", remaining)
	}
}

func TestRegisterUsedIdempotent(t *testing.T) {
	tracker := NewAngleTracker()
	tracker.RegisterUsed("astoria", "beginner-guide")
	tracker.RegisterUsed("astoria", "beginner-guide")

	available := tracker.AvailableAngles("astoria", core.IntentInformational)
	if len(available) != 9 {
		t.Errorf("double registration changed availability: %d angles, want 9", len(available))
	}
}

func TestAnglesPerTopicIndependence(t *testing.T) {
	tracker := NewAngleTracker()
	tracker.RegisterUsed("astoria", "beginner-guide")

	available := tracker.AvailableAngles("bushwick", core.IntentInformational)
	if len(available) != 10 {
		t.Errorf("usage leaked across topics: %d angles, want 10", len(available))
	}
}

func TestUnknownIntentFallsBack(t *testing.T) {
	tracker := NewAngleTracker()
	got := tracker.AvailableAngles("astoria", core.SearchIntent("experimental"))
	want := AnglesFor(core.IntentInformational)
	if len(got) != len(want) {
		t.Errorf("unknown intent returned %d angles, want informational list of %d", len(got), len(want))
	}
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	tracker := NewAngleTracker()
	tracker.RegisterUsed("astoria", "beginner-guide")
	tracker.RegisterUsed("astoria", "local-expert")
	tracker.RegisterUsed("bushwick", "myth-busting")

	restored := NewAngleTracker()
	restored.Restore(tracker.Snapshot())

	if len(restored.AvailableAngles("astoria", core.IntentInformational)) != 8 {
		t.Error("restored tracker lost astoria usage")
	}
	if len(restored.AvailableAngles("bushwick", core.IntentInformational)) != 9 {
		t.Error("restored tracker lost bushwick usage")
	}
}
