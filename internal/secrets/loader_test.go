package secrets

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadPrefersFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dsn")
	if err := os.WriteFile(path, []byte("  postgres://file  \n"), 0o600); err != nil {
		t.Fatalf("write secret: %v", err)
	}
	t.Setenv("TENDER_BID_TEST_DSN", "postgres://env")

	got, err := Load(Source{Name: "dsn", File: path, Env: "TENDER_BID_TEST_DSN", Value: "postgres://inline"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "postgres://file" {
		t.Fatalf("expected file value, got %q", got)
	}
}

func TestLoadFallsBackToEnvThenValue(t *testing.T) {
	t.Setenv("TENDER_BID_TEST_KEY", "from-env")

	got, err := Load(Source{Name: "key", Env: "TENDER_BID_TEST_KEY", Value: "inline"})
	if err != nil || got != "from-env" {
		t.Fatalf("expected env value, got %q (%v)", got, err)
	}

	got, err = Load(Source{Name: "key", Env: "TENDER_BID_TEST_UNSET", Value: " inline "})
	if err != nil || got != "inline" {
		t.Fatalf("expected inline value, got %q (%v)", got, err)
	}
}

func TestLoadErrors(t *testing.T) {
	empty := filepath.Join(t.TempDir(), "empty")
	if err := os.WriteFile(empty, []byte("   "), 0o600); err != nil {
		t.Fatalf("write secret: %v", err)
	}

	cases := []struct {
		name string
		src  Source
		want string
	}{
		{name: "missing file", src: Source{Name: "gemini api key", File: filepath.Join(t.TempDir(), "nope")}, want: "reading gemini api key"},
		{name: "empty file", src: Source{Name: "gemini api key", File: empty}, want: "is empty"},
		{name: "nothing configured", src: Source{}, want: "secret is not configured"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(tc.src)
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected %q in %q", tc.want, err.Error())
			}
		})
	}
}
