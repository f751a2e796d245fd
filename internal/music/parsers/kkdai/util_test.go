package kkdai

import "testing"

func TestExtractYouTubeID(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=42", "dQw4w9WgXcQ", false},
		{"https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"https://youtu.be/dQw4w9WgXcQ?t=42", "dQw4w9WgXcQ", false},
		{"https://example.com/stream.mp3", "", true},
	}

	for _, tt := range tests {
		got, err := extractYouTubeID(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("extractYouTubeID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("extractYouTubeID(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
