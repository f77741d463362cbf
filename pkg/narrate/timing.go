package narrate

import "time"

// cue is a scheduled sentence boundary within one segment.
type cue struct {
	unit  int           // unit index within the segment
	delay time.Duration // delay from the moment scheduling occurs
}

// planCues computes the highlight schedule for one segment.
//
// The model is uniform characters-per-second: each unit's duration is
// proportional to its rune count within the segment's total decoded
// duration. No per-word timestamps exist, so this approximation is the
// designed fallback.
//
// from is the offset the segment is played from (non-zero when resuming
// mid-segment). The returned current is the unit to report immediately;
// cues covers the remaining unit boundaries, each relative to now. When a
// resume offset lands exactly on a unit boundary, the earlier unit is
// reported (deliberate tie-break).
//
// Degenerate segments (no characters, or non-positive duration) return
// current = -1 and no cues: playback continues, highlighting is skipped.
func planCues(units []string, total, from time.Duration) (current int, cues []cue) {
	chars := 0
	for _, u := range units {
		chars += len([]rune(u))
	}
	if chars <= 0 || total <= 0 {
		return -1, nil
	}

	// Cumulative end time of each unit under the uniform rate.
	ends := make([]time.Duration, len(units))
	var cum time.Duration
	for i, u := range units {
		cum += time.Duration(int64(total) * int64(len([]rune(u))) / int64(chars))
		ends[i] = cum
	}
	// Absorb integer-division slack into the final unit.
	ends[len(ends)-1] = total

	if from < 0 {
		from = 0
	}
	current = len(units) - 1
	for i, end := range ends {
		if end >= from {
			current = i
			break
		}
	}

	for j := current + 1; j < len(units); j++ {
		cues = append(cues, cue{unit: j, delay: ends[j-1] - from})
	}
	return current, cues
}
