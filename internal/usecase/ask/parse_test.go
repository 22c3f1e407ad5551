package ask

import "testing"

func TestParseStructured(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		wantAnswer string
		wantConf   float64
		wantOK     bool
	}{
		{
			name:       "well formed",
			raw:        `{"answer": "Paris", "confidence": 87}`,
			wantAnswer: "Paris",
			wantConf:   87,
			wantOK:     true,
		},
		{
			name:       "float confidence",
			raw:        `{"answer": "Paris", "confidence": 87.5}`,
			wantAnswer: "Paris",
			wantConf:   87.5,
			wantOK:     true,
		},
		{
			name:       "quoted confidence",
			raw:        `{"answer": "Paris", "confidence": "92"}`,
			wantAnswer: "Paris",
			wantConf:   92,
			wantOK:     true,
		},
		{
			name:       "confidence above range clamped",
			raw:        `{"answer": "Paris", "confidence": 150}`,
			wantAnswer: "Paris",
			wantConf:   100,
			wantOK:     true,
		},
		{
			name:       "fenced json",
			raw:        "```json\n{\"answer\": \"Paris\", \"confidence\": 80}\n```",
			wantAnswer: "Paris",
			wantConf:   80,
			wantOK:     true,
		},
		{
			name:       "missing confidence",
			raw:        `{"answer": "Paris"}`,
			wantAnswer: "Paris",
			wantConf:   0,
			wantOK:     true,
		},
		{
			name:   "plain prose",
			raw:    "The capital of France is Paris.",
			wantOK: false,
		},
		{
			name:   "confidence with trailing reason",
			raw:    `{"answer": "Paris", "confidence": 87 (I am fairly sure)}`,
			wantOK: false,
		},
		{
			name:   "empty object",
			raw:    `{}`,
			wantOK: false,
		},
		{
			name:   "json array",
			raw:    `[1, 2, 3]`,
			wantOK: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			answer, conf, ok := parseStructured(tt.raw)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if answer != tt.wantAnswer {
				t.Errorf("answer = %q, want %q", answer, tt.wantAnswer)
			}
			if conf != tt.wantConf {
				t.Errorf("confidence = %v, want %v", conf, tt.wantConf)
			}
		})
	}
}
