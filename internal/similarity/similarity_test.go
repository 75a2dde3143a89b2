package similarity

import "testing"

func TestCalculate(t *testing.T) {
	tests := []struct {
		name  string
		a, b  string
		want  float64
		exact bool
	}{
		{"identical", "launch day is here", "launch day is here", 1.0, true},
		{"identical ignoring case", "Launch Day", "launch day", 1.0, true},
		{"disjoint", "alpha beta", "gamma delta", 0.0, true},
		{"both empty", "", "", 0.0, true},
		{"half overlap", "a b", "a c", 1.0 / 3.0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Calculate(tt.a, tt.b)
			if got != tt.want {
				t.Errorf("Calculate(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestCalculateRange(t *testing.T) {
	got := Calculate("discover our brand new automation platform today", "discover our brand new analytics platform today")
	if got <= 0 || got >= 1 {
		t.Errorf("Calculate() = %v, want strictly between 0 and 1 for partial overlap", got)
	}
}

func TestCheckForDuplicates(t *testing.T) {
	previous := []string{"Discover how our platform saves you hours every week"}

	t.Run("near duplicate flagged", func(t *testing.T) {
		news := []string{"Discover how our platform saves you hours every single week"}
		if !CheckForDuplicates(news, previous, 0.7) {
			t.Error("expected near-duplicate to be flagged")
		}
	})

	t.Run("fresh content passes", func(t *testing.T) {
		news := []string{"Meet the team behind the robots"}
		if CheckForDuplicates(news, previous, 0.7) {
			t.Error("unrelated content should not be flagged")
		}
	})

	t.Run("zero threshold uses default", func(t *testing.T) {
		news := []string{"Completely different words entirely"}
		if CheckForDuplicates(news, previous, 0) {
			t.Error("default threshold should not flag unrelated content")
		}
	})

	t.Run("empty inputs", func(t *testing.T) {
		if CheckForDuplicates(nil, previous, 0.7) || CheckForDuplicates([]string{"x"}, nil, 0.7) {
			t.Error("empty inputs should never flag")
		}
	})
}
