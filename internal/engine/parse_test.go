package engine

import (
	"reflect"
	"testing"
)

func TestParseTags(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "simple list",
			input: "food, travel",
			want:  []string{"food", "travel"},
		},
		{
			name:  "blank segments dropped",
			input: " ,food,, travel ,",
			want:  []string{"food", "travel"},
		},
		{
			name:  "empty string",
			input: "",
			want:  []string{},
		},
		{
			name:  "capped at eight",
			input: "a,b,c,d,e,f,g,h,i,j",
			want:  []string{"a", "b", "c", "d", "e", "f", "g", "h"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseTags(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseTags(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseAddressCSV(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "dedupes keeping first-seen order",
			input: "alice, bob, alice, carol",
			want:  []string{"alice", "bob", "carol"},
		},
		{
			name:  "blanks skipped",
			input: ", ,alice,",
			want:  []string{"alice"},
		},
		{
			name:  "empty input",
			input: "",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseAddressCSV(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseAddressCSV(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseWeights(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  map[string]float64
	}{
		{
			name:  "two entries",
			input: "alice=2, bob=1",
			want:  map[string]float64{"alice": 2, "bob": 1},
		},
		{
			name:  "invalid segments skipped",
			input: "alice=2, =3, bob=abc, carol=-1, dave=0, eve",
			want:  map[string]float64{"alice": 2},
		},
		{
			name:  "non-finite weights skipped",
			input: "alice=Inf, bob=NaN, carol=-Inf, dave=1",
			want:  map[string]float64{"dave": 1},
		},
		{
			name:  "fractional weights",
			input: "alice=0.5,bob=1.5",
			want:  map[string]float64{"alice": 0.5, "bob": 1.5},
		},
		{
			name:  "empty string",
			input: "",
			want:  map[string]float64{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseWeights(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseWeights(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseBoolLike(t *testing.T) {
	no := false
	tests := []struct {
		name     string
		input    string
		fallback *bool
		want     *bool
	}{
		{name: "true", input: "true", want: boolPtr(true)},
		{name: "one", input: "1", want: boolPtr(true)},
		{name: "yes uppercase", input: " YES ", want: boolPtr(true)},
		{name: "false", input: "false", want: boolPtr(false)},
		{name: "zero", input: "0", want: boolPtr(false)},
		{name: "no", input: "no", want: boolPtr(false)},
		{name: "garbage uses fallback", input: "maybe", fallback: &no, want: &no},
		{name: "empty uses nil fallback", input: "", fallback: nil, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseBoolLike(tt.input, tt.fallback)
			if (got == nil) != (tt.want == nil) {
				t.Fatalf("parseBoolLike(%q) = %v, want %v", tt.input, got, tt.want)
			}
			if got != nil && *got != *tt.want {
				t.Errorf("parseBoolLike(%q) = %v, want %v", tt.input, *got, *tt.want)
			}
		})
	}
}

func boolPtr(v bool) *bool { return &v }
