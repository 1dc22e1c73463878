package autojig

import "testing"

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		expected Command
	}{
		{"Empty", "", Command{Kind: CommandNone}},
		{"Noop", "0", Command{Kind: CommandNone}},
		{"AutoCycle", "1", Command{Kind: CommandAutoCycle}},
		{"Forward", "250", Command{Kind: CommandMoveSteps, Steps: 250}},
		{"Backward", "-130", Command{Kind: CommandMoveSteps, Steps: -130}},
		{"NonNumeric", "abc", Command{Kind: CommandNone}},
		{"LoneMinus", "-", Command{Kind: CommandNone}},
		{"LeadingNoise", "steps=42", Command{Kind: CommandMoveSteps, Steps: 42}},
		{"NoiseAroundNegative", "x-7y", Command{Kind: CommandMoveSteps, Steps: -7}},
		{"TrailingDiscarded", "12a34", Command{Kind: CommandMoveSteps, Steps: 12}},
		{"NegativeNoop", "-0", Command{Kind: CommandNone}},
		{"MaxInt32", "2147483647", Command{Kind: CommandMoveSteps, Steps: 2147483647}},
		{"Overflow", "99999999999", Command{Kind: CommandNone}},
		{"OverflowByOne", "2147483648", Command{Kind: CommandNone}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseCommand([]byte(tt.in))
			if got != tt.expected {
				t.Errorf("ParseCommand(%q) = %+v, want %+v", tt.in, got, tt.expected)
			}
		})
	}
}
