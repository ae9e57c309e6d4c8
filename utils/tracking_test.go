package utils

import (
	"strings"
	"testing"
)

func TestTrackingTokenDeterministic(t *testing.T) {
	a := TrackingToken("msg-123")
	b := TrackingToken("msg-123")
	if a != b {
		t.Fatalf("token not deterministic: %q vs %q", a, b)
	}
	if a == TrackingToken("msg-124") {
		t.Fatalf("different message ids produced the same token")
	}
}

func TestVerifyTrackingToken(t *testing.T) {
	token := TrackingToken("msg-123")
	if !VerifyTrackingToken("msg-123", token) {
		t.Fatalf("valid token rejected")
	}
	if VerifyTrackingToken("msg-124", token) {
		t.Fatalf("token accepted for the wrong message id")
	}
	if VerifyTrackingToken("msg-123", "forged") {
		t.Fatalf("forged token accepted")
	}
}

func TestGenerateTrackingPixelURL(t *testing.T) {
	url := GenerateTrackingPixelURL("https://track.example.com", "msg-123")
	want := "https://track.example.com/track/open/msg-123/" + TrackingToken("msg-123")
	if url != want {
		t.Fatalf("got %q, want %q", url, want)
	}
}

func TestInjectTracking(t *testing.T) {
	body := "<p>Hello</p>"
	out := InjectTracking(body, "https://track.example.com", "msg-123")

	if !strings.HasPrefix(out, body) {
		t.Fatalf("original body was altered: %q", out)
	}
	if !strings.Contains(out, `<img src="https://track.example.com/track/open/msg-123/`) {
		t.Fatalf("pixel not injected: %q", out)
	}
	if !strings.Contains(out, `style="display:none"`) {
		t.Fatalf("pixel is not hidden: %q", out)
	}
}

func TestTrackingPixelGIFHeader(t *testing.T) {
	if string(TrackingPixelGIF[:6]) != "GIF89a" {
		t.Fatalf("pixel is not a GIF89a image")
	}
}
