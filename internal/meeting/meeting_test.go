package meeting

import (
	"regexp"
	"testing"
)

var meetURLPattern = regexp.MustCompile(`^https://meet\.google\.com/[a-z0-9]{3}-[a-z0-9]{4}-[a-z0-9]{3}$`)

func TestGenerate_MeetURLPattern(t *testing.T) {
	link, err := Generate(PlatformMeet, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !meetURLPattern.MatchString(link.URL) {
		t.Fatalf("URL %q does not match the Google Meet pattern", link.URL)
	}
	if len(link.ID) != idLength {
		t.Fatalf("expected identifier of length %d, got %q", idLength, link.ID)
	}
}

func TestGenerate_FreshIdentifiersNeverCollide(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 200; i++ {
		link, err := Generate(PlatformMeet, "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, dup := seen[link.ID]; dup {
			t.Fatalf("identifier %q generated twice", link.ID)
		}
		seen[link.ID] = struct{}{}
	}
}

func TestGenerate_IdempotentGivenIdentifier(t *testing.T) {
	first, err := Generate(PlatformZoom, "abc123def4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := Generate(PlatformZoom, "abc123def4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != second {
		t.Fatalf("expected identical links, got %+v and %+v", first, second)
	}
	if first.URL != "https://zoom.us/j/abc123def4" {
		t.Fatalf("unexpected zoom URL %q", first.URL)
	}
}

func TestParsePlatform_UnknownFallsBackToMeet(t *testing.T) {
	cases := []string{"", "webex", "MEET", "  zoom  "}
	expected := []Platform{PlatformMeet, PlatformMeet, PlatformMeet, PlatformZoom}
	for i, raw := range cases {
		if got := ParsePlatform(raw); got != expected[i] {
			t.Fatalf("ParsePlatform(%q) = %q, expected %q", raw, got, expected[i])
		}
	}
}

func TestQRCode_ProducesPNG(t *testing.T) {
	png, err := QRCode("https://meet.google.com/abc-defg-hij")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(png) < 8 || png[1] != 'P' || png[2] != 'N' || png[3] != 'G' {
		t.Fatalf("expected PNG output, got %d bytes", len(png))
	}
}
