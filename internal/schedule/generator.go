package schedule

// Window is one working interval submitted by a doctor, in 24-hour "HH:MM"
// form, e.g. a morning session and an afternoon session.
type Window struct {
	Start string
	End   string
}

// GenerateSlots cuts [start, end) into consecutive ranges of duration
// minutes. A trailing remainder shorter than the duration is dropped; that
// is deliberate policy, not an error. A non-positive duration or an
// inverted window yields an empty sequence with no error.
func GenerateSlots(start, end string, duration int) ([]SlotRange, error) {
	startMin, err := ToMinutes(start)
	if err != nil {
		return nil, err
	}
	endMin, err := ToMinutes(end)
	if err != nil {
		return nil, err
	}
	if duration <= 0 {
		return nil, nil
	}

	var ranges []SlotRange
	for cursor := startMin; cursor+duration <= endMin; cursor += duration {
		ranges = append(ranges, SlotRange{StartMin: cursor, EndMin: cursor + duration})
	}
	return ranges, nil
}

// GenerateWindows runs GenerateSlots over each window independently and
// concatenates the results. Overlap between windows is the caller's problem;
// candidates are checked as a batch before insertion.
func GenerateWindows(windows []Window, duration int) ([]SlotRange, error) {
	var ranges []SlotRange
	for _, w := range windows {
		generated, err := GenerateSlots(w.Start, w.End, duration)
		if err != nil {
			return nil, err
		}
		ranges = append(ranges, generated...)
	}
	return ranges, nil
}
