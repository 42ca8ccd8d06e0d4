package transcription

import "testing"

func TestPlanChunks(t *testing.T) {
	tests := []struct {
		name       string
		duration   int
		wantCount  int
		wantStarts []int
	}{
		{"exact multiple", 60, 1, []int{0}},
		{"five second tail kept", 125, 3, []int{0, 60, 120}},
		{"two second tail dropped", 122, 2, []int{0, 60}},
		{"one second tail dropped", 301, 5, []int{0, 60, 120, 180, 240}},
		{"mid window tail kept", 185, 4, []int{0, 60, 120, 180}},
		{"two full windows", 120, 2, []int{0, 60}},
		{"shorter than one window", 30, 1, []int{0}},
		{"below tail threshold", 3, 0, nil},
		{"zero duration", 0, 0, nil},
		{"negative duration", -10, 0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			windows := PlanChunks(tt.duration, 60, 5)
			if len(windows) != tt.wantCount {
				t.Fatalf("PlanChunks(%d) = %d windows, want %d", tt.duration, len(windows), tt.wantCount)
			}
			for i, w := range windows {
				if w.Index != i {
					t.Errorf("window %d has index %d", i, w.Index)
				}
				if w.StartSeconds != tt.wantStarts[i] {
					t.Errorf("window %d starts at %d, want %d", i, w.StartSeconds, tt.wantStarts[i])
				}
			}
		})
	}
}

func TestPlanChunksZeroChunkWidth(t *testing.T) {
	if windows := PlanChunks(120, 0, 5); windows != nil {
		t.Fatalf("expected nil windows for zero chunk width, got %v", windows)
	}
}
