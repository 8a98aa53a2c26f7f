// Package meeting builds video-conferencing join links for bookings.
// Link construction is pure; identifier generation draws from crypto/rand so
// meeting URLs are not guessable.
package meeting

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

// Platform identifies a supported video-conferencing provider.
type Platform string

const (
	PlatformMeet  Platform = "meet"
	PlatformZoom  Platform = "zoom"
	PlatformTeams Platform = "teams"
	PlatformJitsi Platform = "jitsi"
)

const (
	idCharset = "abcdefghijklmnopqrstuvwxyz0123456789"
	idLength  = 10
)

// Link is a generated join URL together with the identifier embedded in it.
type Link struct {
	URL string
	ID  string
}

// ParsePlatform maps a raw tag to a known platform. Unknown tags fall back to
// Google Meet deterministically.
func ParsePlatform(raw string) Platform {
	switch Platform(strings.ToLower(strings.TrimSpace(raw))) {
	case PlatformZoom:
		return PlatformZoom
	case PlatformTeams:
		return PlatformTeams
	case PlatformJitsi:
		return PlatformJitsi
	default:
		return PlatformMeet
	}
}

// Generate returns the join link for the platform. When existingID is empty a
// fresh identifier is generated; given the same identifier the result is
// always identical.
func Generate(platform Platform, existingID string) (Link, error) {
	id := strings.TrimSpace(existingID)
	if id == "" {
		generated, err := randomID(idLength)
		if err != nil {
			return Link{}, fmt.Errorf("generate meeting id: %w", err)
		}
		id = generated
	}

	return Link{URL: joinURL(platform, id), ID: id}, nil
}

// joinURL is a pure string template per platform.
func joinURL(platform Platform, id string) string {
	switch platform {
	case PlatformZoom:
		return "https://zoom.us/j/" + id
	case PlatformTeams:
		return "https://teams.microsoft.com/l/meetup-join/" + id
	case PlatformJitsi:
		return "https://meet.jit.si/" + id
	default:
		return "https://meet.google.com/" + meetCode(id)
	}
}

// meetCode renders an identifier in Google Meet's xxx-yyyy-zzz grouping.
// Identifiers shorter than the grouping are returned unchanged.
func meetCode(id string) string {
	if len(id) != idLength {
		return id
	}
	return id[:3] + "-" + id[3:7] + "-" + id[7:]
}

// QRCode renders the join URL as a PNG, attached to confirmation emails so
// the client can join from a phone.
func QRCode(url string) ([]byte, error) {
	return qrcode.Encode(url, qrcode.Medium, 256)
}

func randomID(length int) (string, error) {
	max := big.NewInt(int64(len(idCharset)))
	var b strings.Builder
	b.Grow(length)
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b.WriteByte(idCharset[n.Int64()])
	}
	return b.String(), nil
}
