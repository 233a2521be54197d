package telemetry

import "testing"

func TestSessionCode(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Practice 1", "FP1"},
		{"Practice 2", "FP2"},
		{"Practice 3", "FP3"},
		{"Qualifying", "Q"},
		{"Sprint Qualifying", "SQ"},
		{"Sprint Shootout", "SQ"},
		{"Sprint", "S"},
		{"Race", "R"},
		{"Pre Season Test", "PreSeasonTest"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SessionCode(tt.name); got != tt.want {
				t.Errorf("SessionCode(%q) = %q, want %q", tt.name, got, tt.want)
			}
		})
	}
}

func TestSaveName(t *testing.T) {
	ev := Event{Name: "Las Vegas Grand Prix", Year: 2023, Session: "Qualifying"}
	got := SaveName(ev, "T12_Braking")
	want := "LasVegasGrandPrix2023_Q_T12_Braking"
	if got != want {
		t.Errorf("SaveName = %q, want %q", got, want)
	}
}
