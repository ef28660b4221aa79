package calib

import "time"

// Aggregator collects gaze samples during a guided calibration sequence and
// groups them by the target that was displayed when each was captured.
// Grouping is by exact equality on the normalized target coordinates used
// during capture. Not safe for concurrent use; each calibration session owns
// its own Aggregator.
type Aggregator struct {
	order  []TargetPos
	groups map[TargetPos][]GazeSample
}

// NewAggregator creates an empty Aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{
		groups: make(map[TargetPos][]GazeSample),
	}
}

// AddSample appends a gaze observation to the group for the given target,
// creating the group on first occurrence.
func (a *Aggregator) AddSample(gaze Vec3, target TargetPos, frameIndex int) {
	if _, ok := a.groups[target]; !ok {
		a.order = append(a.order, target)
	}
	a.groups[target] = append(a.groups[target], GazeSample{
		Gaze:       gaze,
		FrameIndex: frameIndex,
		CapturedAt: time.Now().UTC(),
	})
}

// Add appends a fully-populated sample, preserving its head pose and capture
// time. Used when replaying stored calibration rows.
func (a *Aggregator) Add(sample GazeSample, target TargetPos) {
	if _, ok := a.groups[target]; !ok {
		a.order = append(a.order, target)
	}
	a.groups[target] = append(a.groups[target], sample)
}

// Count returns the number of samples collected for the given target.
func (a *Aggregator) Count(target TargetPos) int {
	return len(a.groups[target])
}

// Targets returns the distinct targets seen so far, in first-seen order.
func (a *Aggregator) Targets() []TargetPos {
	out := make([]TargetPos, len(a.order))
	copy(out, a.order)
	return out
}

// Finalize returns the collected target groups in first-seen order.
// It fails with InsufficientTargetsError if fewer than four distinct targets
// were observed, and with InsufficientSamplesError if any group ended up
// empty after discarding failed detections.
func (a *Aggregator) Finalize() ([]TargetGroup, error) {
	if len(a.order) < len(CalibrationTargets) {
		return nil, &InsufficientTargetsError{Found: len(a.order)}
	}

	groups := make([]TargetGroup, 0, len(a.order))
	for _, target := range a.order {
		samples := a.groups[target]
		if len(samples) == 0 {
			return nil, &InsufficientSamplesError{Target: target}
		}
		groups = append(groups, TargetGroup{Target: target, Samples: samples})
	}
	return groups, nil
}
