package transcription

// Window is one planned slice of the source timeline. Index doubles as the
// aggregation order; StartSeconds is the extraction offset.
type Window struct {
	Index        int
	StartSeconds int
}

// PlanChunks partitions durationSeconds into fixed-width windows. The raw
// count is ceil(duration/chunkSeconds); a trailing window strictly shorter
// than minTailSeconds is dropped rather than transcribed as a near-empty
// clip. Non-positive durations produce no windows.
func PlanChunks(durationSeconds, chunkSeconds, minTailSeconds int) []Window {
	if durationSeconds <= 0 || chunkSeconds <= 0 {
		return nil
	}

	numChunks := (durationSeconds + chunkSeconds - 1) / chunkSeconds

	if durationSeconds-(numChunks-1)*chunkSeconds < minTailSeconds {
		numChunks--
	}

	windows := make([]Window, 0, numChunks)
	for i := 0; i < numChunks; i++ {
		windows = append(windows, Window{Index: i, StartSeconds: i * chunkSeconds})
	}
	return windows
}
