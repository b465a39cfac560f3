package validation

import (
	"math"
	"strings"
	"testing"
	"time"
)

func TestValidateLabel(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		want        string
		wantErr     bool
		errContains string
	}{
		{
			name:    "valid simple label",
			input:   "Red",
			want:    "Red",
			wantErr: false,
		},
		{
			name:    "valid label with spaces",
			input:   "Blue Team",
			want:    "Blue Team",
			wantErr: false,
		},
		{
			name:    "label with leading/trailing spaces",
			input:   "  Red  ",
			want:    "Red",
			wantErr: false,
		},
		{
			name:        "empty label",
			input:       "",
			wantErr:     true,
			errContains: "cannot be empty",
		},
		{
			name:        "only whitespace",
			input:       "   ",
			wantErr:     true,
			errContains: "cannot be only whitespace",
		},
		{
			name:        "too long label",
			input:       strings.Repeat("a", MaxLabelLen+1),
			wantErr:     true,
			errContains: "too long",
		},
		{
			name:        "label with special characters",
			input:       "Red@#$",
			wantErr:     true,
			errContains: "invalid characters",
		},
		{
			name:        "label with control character",
			input:       "Red\x00Ball",
			wantErr:     true,
			errContains: "control characters",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateLabel(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateLabel() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if err != nil && tt.errContains != "" && !strings.Contains(err.Error(), tt.errContains) {
				t.Errorf("ValidateLabel() error = %v, should contain %q", err, tt.errContains)
			}
			if got != tt.want {
				t.Errorf("ValidateLabel() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNumericGuards(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantErr     bool
		errContains string
	}{
		{name: "finite ok", err: ValidateFinite("x", 1.5)},
		{name: "finite nan", err: ValidateFinite("x", math.NaN()), wantErr: true, errContains: "finite"},
		{name: "finite inf", err: ValidateFinite("x", math.Inf(-1)), wantErr: true, errContains: "finite"},
		{name: "positive ok", err: ValidatePositive("radius", 15)},
		{name: "positive zero", err: ValidatePositive("radius", 0), wantErr: true, errContains: "radius: must be positive"},
		{name: "positive negative", err: ValidatePositive("radius", -1), wantErr: true, errContains: "must be positive"},
		{name: "non-negative zero", err: ValidateNonNegative("spacing", 0)},
		{name: "non-negative negative", err: ValidateNonNegative("spacing", -0.1), wantErr: true, errContains: "cannot be negative"},
		{name: "range inside", err: ValidateRange("hole", 60, 0, 360)},
		{name: "range edge", err: ValidateRange("hole", 360, 0, 360)},
		{name: "range above", err: ValidateRange("hole", 361, 0, 360), wantErr: true, errContains: "out of range"},
		{name: "int range inside", err: ValidateIntRange("count", 100, 1, MaxRingCount)},
		{name: "int range zero", err: ValidateIntRange("count", 0, 1, MaxRingCount), wantErr: true, errContains: "count: 0 out of range"},
		{name: "timestep ok", err: ValidateTimestep(1.0 / 60)},
		{name: "timestep zero", err: ValidateTimestep(0), wantErr: true, errContains: "dt"},
		{name: "timestep nan", err: ValidateTimestep(math.NaN()), wantErr: true, errContains: "dt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if (tt.err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", tt.err, tt.wantErr)
			}
			if tt.err != nil && !strings.Contains(tt.err.Error(), tt.errContains) {
				t.Errorf("error = %v, should contain %q", tt.err, tt.errContains)
			}
		})
	}
}

// fakeClock is advanced manually by tests.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func TestIntervalLimiter_Allow(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	l := NewIntervalLimiterWithClock(100*time.Millisecond, clock.Now)

	if !l.Allow("notes") {
		t.Fatal("first event should be allowed")
	}
	if l.Allow("notes") {
		t.Error("immediate second event should be denied")
	}

	clock.Advance(99 * time.Millisecond)
	if l.Allow("notes") {
		t.Error("event 99ms later should be denied")
	}

	// Denied events do not move the window.
	clock.Advance(time.Millisecond)
	if !l.Allow("notes") {
		t.Error("event 100ms after the last allowed one should be allowed")
	}

	if !l.Allow("bounce") {
		t.Error("different key should be allowed")
	}
}

func TestIntervalLimiter_Reset(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	l := NewIntervalLimiterWithClock(time.Second, clock.Now)

	l.Allow("notes")
	l.Reset()
	if !l.Allow("notes") {
		t.Error("event after Reset should be allowed")
	}
	if l.Interval() != time.Second {
		t.Errorf("Interval() = %v, want 1s", l.Interval())
	}
}

func TestIntervalLimiter_SystemClock(t *testing.T) {
	l := NewIntervalLimiter(20 * time.Millisecond)

	if !l.Allow("notes") {
		t.Fatal("first event should be allowed")
	}
	if l.Allow("notes") {
		t.Error("immediate second event should be denied")
	}

	time.Sleep(30 * time.Millisecond)

	if !l.Allow("notes") {
		t.Error("event after the interval should be allowed")
	}
}
