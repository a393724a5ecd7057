package title

import "testing"

func TestSplitVersion(t *testing.T) {
	t.Parallel()

	cases := []struct {
		raw         string
		wantVersion string
		wantClean   string
	}{
		{"Best Game [v1.2] [MEF]", "v1.2", "Best Game"},
		{"Plain Title", "", "Plain Title"},
		{"[0.8 Beta] Leading Tag", "0.8 Beta", "Leading Tag"},
		{"Spaced   Out [ v2 ]", "v2", "Spaced Out"},
		{"Dashed - [v3] -", "v3", "Dashed"},
		{"", "", ""},
	}

	for _, tc := range cases {
		version, clean := SplitVersion(tc.raw)
		if version != tc.wantVersion {
			t.Fatalf("SplitVersion(%q) version = %q, want %q", tc.raw, version, tc.wantVersion)
		}
		if clean != tc.wantClean {
			t.Fatalf("SplitVersion(%q) clean = %q, want %q", tc.raw, clean, tc.wantClean)
		}
	}
}

func TestClean(t *testing.T) {
	t.Parallel()

	cases := []struct {
		raw  string
		want string
	}{
		{"Best Game [Episode 8a] [MEF]", "Best Game"},
		{"Best [Special] Game [v1.0]", "Best [Special] Game"},
		{"  Lots   of   space  ", "Lots of space"},
		{"", ""},
	}

	for _, tc := range cases {
		if got := Clean(tc.raw); got != tc.want {
			t.Fatalf("Clean(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}
