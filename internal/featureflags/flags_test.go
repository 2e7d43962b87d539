package featureflags

import "testing"

func TestEnabled(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"1", true},
		{"true", true},
		{"TRUE", true},
		{"yes", true},
		{"on", true},
		{"0", false},
		{"false", false},
		{"off", false},
		{"", false},
		{"maybe", false},
	}
	for _, tt := range tests {
		t.Setenv("FLAG_DISABLE_ORDER_REAPER", tt.value)
		if got := Enabled("disable_order_reaper"); got != tt.want {
			t.Errorf("Enabled with %q = %v, want %v", tt.value, got, tt.want)
		}
	}

	if Enabled("never_set_flag") {
		t.Error("unset flag must be off")
	}
}
