package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strings"
)

// trackingSalt keys the token derivation so pixel URLs cannot be forged
// from the message id alone.
const trackingSalt = "inviteflow-track"

// TrackingToken derives the open-tracking token for a message id. The
// derivation is deterministic so the tracking endpoint can recompute and
// compare.
func TrackingToken(messageID string) string {
	mac := hmac.New(sha256.New, []byte(trackingSalt))
	mac.Write([]byte(messageID))
	return strings.TrimRight(base64.URLEncoding.EncodeToString(mac.Sum(nil))[:20], "=")
}

// VerifyTrackingToken reports whether token belongs to messageID.
func VerifyTrackingToken(messageID, token string) bool {
	return hmac.Equal([]byte(TrackingToken(messageID)), []byte(token))
}

// GenerateTrackingPixelURL generates a tracking pixel URL for email opens
func GenerateTrackingPixelURL(baseURL, messageID string) string {
	return fmt.Sprintf("%s/track/open/%s/%s", baseURL, messageID, TrackingToken(messageID))
}

// InjectTracking appends the open-tracking pixel to email content
func InjectTracking(htmlContent, baseURL, messageID string) string {
	pixelURL := GenerateTrackingPixelURL(baseURL, messageID)
	trackingPixel := fmt.Sprintf(`<img src="%s" alt="" width="1" height="1" style="display:none">`, pixelURL)
	return htmlContent + trackingPixel
}

// TrackingPixelGIF is a 1x1 transparent GIF served for open events
var TrackingPixelGIF = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x01, 0x00, 0x01, 0x00, 0x80, 0x00,
	0x00, 0x00, 0x00, 0x00, 0xff, 0xff, 0xff, 0x21, 0xf9, 0x04, 0x01, 0x00,
	0x00, 0x00, 0x00, 0x2c, 0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x01, 0x00,
	0x00, 0x02, 0x02, 0x44, 0x01, 0x00, 0x3b,
}
