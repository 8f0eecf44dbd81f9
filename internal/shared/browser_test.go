package shared

import (
	"errors"
	"strings"
	"testing"
)

func TestRouteURL(t *testing.T) {
	tc := []struct {
		name  string
		base  string
		route string
		want  string
	}{
		{name: "plain base", base: "https://midhah.com", route: "/nasheed/tala-al-badru", want: "https://midhah.com/nasheed/tala-al-badru"},
		{name: "trailing slash", base: "https://midhah.com/", route: "/naat/x", want: "https://midhah.com/naat/x"},
		{name: "base with path", base: "https://example.com/site", route: "naat/x", want: "https://example.com/site/naat/x"},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RouteURL(tt.base, tt.route)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("RouteURL() = %q, want %q", got, tt.want)
			}
		})
	}

	t.Run("relative base is rejected", func(t *testing.T) {
		if _, err := RouteURL("midhah.com", "/a/b"); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})
}

func TestOpenBrowserUnsupportedPlatform(t *testing.T) {
	orig := getRuntime
	getRuntime = func() string { return "plan9" }
	defer func() { getRuntime = orig }()

	err := OpenBrowser("https://midhah.com")
	if err == nil || !strings.Contains(err.Error(), "unsupported platform") {
		t.Errorf("expected unsupported platform error, got %v", err)
	}
}
