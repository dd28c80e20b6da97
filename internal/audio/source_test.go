package audio

import (
	"context"
	"errors"
	"testing"
)

func TestMIMEType(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"lecture.wav", "audio/wav"},
		{"lecture.mp3", "audio/mpeg"},
		{"lecture.m4a", "audio/mp4"},
		{"lecture.ogg", "audio/ogg"},
		{"LECTURE.WAV", "audio/wav"},
		{"/tmp/nested/talk.flac", "audio/flac"},
	}

	for _, tt := range tests {
		got, err := MIMEType(tt.path)
		if err != nil {
			t.Errorf("MIMEType(%q) error = %v", tt.path, err)
			continue
		}
		if got != tt.want {
			t.Errorf("MIMEType(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestMIMETypeUnsupported(t *testing.T) {
	for _, path := range []string{"notes", "archive.xyzzy"} {
		_, err := MIMEType(path)
		if !errors.Is(err, ErrUnsupportedFormat) {
			t.Errorf("MIMEType(%q): got %v, want ErrUnsupportedFormat", path, err)
		}
	}
}

func TestProberOpenMissingFile(t *testing.T) {
	p := NewProber("")
	_, err := p.Open(context.Background(), "/nonexistent/lecture.mp3")
	if !errors.Is(err, ErrSourceNotFound) {
		t.Errorf("got %v, want ErrSourceNotFound", err)
	}
}

func TestProberOpenDirectory(t *testing.T) {
	p := NewProber("")
	_, err := p.Open(context.Background(), t.TempDir())
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("got %v, want ErrUnsupportedFormat", err)
	}
}
