package sysprobe

import "testing"

func TestProbe(t *testing.T) {
	info := Probe()
	if info.LogicalCPUs < 1 {
		t.Errorf("LogicalCPUs = %d", info.LogicalCPUs)
	}
	if w := info.Workers(FrameBytes(1080, 1920), 0); w < 1 {
		t.Errorf("Workers() = %d", w)
	}
}

func TestWorkers(t *testing.T) {
	frame := FrameBytes(1080, 1920) // ~16.6 MB
	tests := []struct {
		name  string
		info  Info
		limit int
		want  int
	}{
		{"cpu bound", Info{LogicalCPUs: 8, AvailableBytes: 64 << 30}, 0, 8},
		{"memory bound", Info{LogicalCPUs: 16, AvailableBytes: 4 * frame * 2}, 0, 2},
		{"unknown memory", Info{LogicalCPUs: 4}, 0, 4},
		{"limit", Info{LogicalCPUs: 32, AvailableBytes: 64 << 30}, 6, 6},
		{"never zero", Info{LogicalCPUs: 8, AvailableBytes: 1024}, 0, 1},
		{"no cpus reported", Info{}, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.info.Workers(frame, tt.limit); got != tt.want {
				t.Errorf("Workers() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestFrameBytes(t *testing.T) {
	if got := FrameBytes(10, 10); got != 800 {
		t.Errorf("FrameBytes(10, 10) = %d, want 800", got)
	}
	if FrameBytes(0, 10) != 0 {
		t.Error("empty canvas needs no memory")
	}
}
