package semver

import (
	"errors"
	"testing"
)

func TestParseRoundTrip(t *testing.T) {
	inputs := []string{
		"1.2.3",
		"0.0.0",
		"10.20.30",
		"1.2.3-alpha",
		"1.2.3-alpha.1",
		"1.2.3+build.5",
		"1.2.3-rc.1+build.5",
	}

	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			v, err := Parse(in)
			if err != nil {
				t.Fatalf("Parse(%q) error: %v", in, err)
			}
			if got := v.String(); got != in {
				t.Errorf("Parse(%q).String() = %q, want %q", in, got, in)
			}
		})
	}
}

func TestParseTrimsWhitespace(t *testing.T) {
	v, err := Parse("  1.2.3 ")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if v.String() != "1.2.3" {
		t.Errorf("String() = %q, want %q", v.String(), "1.2.3")
	}
}

func TestParseInvalid(t *testing.T) {
	inputs := []string{
		"",
		"1",
		"1.2",
		"1.2.3.4",
		"v1.2.3",
		"a.b.c",
		"-1.2.3",
		"1.2.x",
	}

	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			if _, err := Parse(in); err == nil {
				t.Errorf("Parse(%q) succeeded, want error", in)
			} else {
				var fe *FormatError
				if !errors.As(err, &fe) {
					t.Errorf("Parse(%q) error %v is not a FormatError", in, err)
				}
			}
		})
	}
}

func TestFromReference(t *testing.T) {
	tests := []struct {
		ref  string
		want Version
	}{
		{"v1.2.3", Version{Major: 1, Minor: 2, Patch: 3}},
		{"1.2.3", Version{Major: 1, Minor: 2, Patch: 3}},
		{"main", Version{Prerelease: "dev", Build: "main"}},
		{"master", Version{Prerelease: "dev", Build: "master"}},
		{"feature/login", Version{Prerelease: "dev", Build: "feature/login"}},
		{"abc1234", Version{Prerelease: "dev", Build: "abc1234"}},
		{"deadbeefdeadbeefdeadbeefdeadbeefdeadbeef", Version{Prerelease: "dev", Build: "deadbee"}},
		{"", Version{Prerelease: "dev", Build: ""}},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			got := FromReference(tt.ref)
			if got.Major != tt.want.Major || got.Minor != tt.want.Minor || got.Patch != tt.want.Patch ||
				got.Prerelease != tt.want.Prerelease || got.Build != tt.want.Build {
				t.Errorf("FromReference(%q) = %+v, want %+v", tt.ref, got, tt.want)
			}
		})
	}
}

func TestFromReferenceNeverDevForValidVersions(t *testing.T) {
	for _, ref := range []string{"v2.0.0", "0.1.0"} {
		if FromReference(ref).IsDevelopment() {
			t.Errorf("FromReference(%q) is a development version", ref)
		}
	}
	if !FromReference("main").IsDevelopment() {
		t.Error("FromReference(main) is not a development version")
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		a    string
		b    string
		want int
	}{
		{"1.0.0", "1.0.0", 0},
		{"2.0.0", "1.9.9", 1},
		{"1.9.9", "2.0.0", -1},
		{"1.10.0", "1.9.0", 1},
		{"1.2.4", "1.2.3", 1},
		{"1.2.3", "1.2.4", -1},
		{"1.0.0-alpha", "1.0.0", -1},
		{"1.0.0", "1.0.0-alpha", 1},
		{"1.0.0-alpha", "1.0.0-beta", -1},
		{"1.0.0-beta", "1.0.0-alpha", 1},
		{"1.0.0-alpha", "1.0.0-alpha", 0},
		{"1.0.0+build1", "1.0.0+build2", 0},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			a, err := Parse(tt.a)
			if err != nil {
				t.Fatal(err)
			}
			b, err := Parse(tt.b)
			if err != nil {
				t.Fatal(err)
			}
			if got := a.Compare(b); got != tt.want {
				t.Errorf("Compare(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestIsCompatibleWith(t *testing.T) {
	tests := []struct {
		a    string
		b    string
		want bool
	}{
		{"1.2.0", "1.2.0", true},
		{"1.3.0", "1.2.0", true},
		{"1.2.5", "1.2.0", true},
		{"1.1.9", "1.2.0", false},
		{"1.2.0", "1.2.1", false},
		{"2.0.0", "1.2.0", false},
		{"1.2.0", "2.0.0", false},
		{"0.9.0", "0.8.0", true},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			a, err := Parse(tt.a)
			if err != nil {
				t.Fatal(err)
			}
			b, err := Parse(tt.b)
			if err != nil {
				t.Fatal(err)
			}
			if got := a.IsCompatibleWith(b); got != tt.want {
				t.Errorf("IsCompatibleWith(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
			// A safe upgrade within a major never orders below its baseline.
			if got := a.IsCompatibleWith(b); got && a.Compare(b) < 0 {
				t.Errorf("%q compatible with %q but compares below it", tt.a, tt.b)
			}
		})
	}
}

func TestSatisfies(t *testing.T) {
	tests := []struct {
		version    string
		constraint string
		want       bool
	}{
		{"1.2.3", "", true},
		{"1.2.3", "*", true},

		{"1.2.0", "^1.2.0", true},
		{"1.3.0", "^1.2.0", true},
		{"1.9.9", "^1.2.0", true},
		{"2.0.0", "^1.2.0", false},
		{"1.1.9", "^1.2.0", false},
		{"0.9.9", "^1.2.0", false},

		{"1.2.0", "~1.2.0", true},
		{"1.2.9", "~1.2.0", true},
		{"1.3.0", "~1.2.0", false},
		{"1.1.9", "~1.2.0", false},

		{"1.2.3", ">=1.2.3", true},
		{"1.2.2", ">=1.2.3", false},
		{"1.2.3", "<=1.2.3", true},
		{"1.2.4", "<=1.2.3", false},
		{"1.2.4", ">1.2.3", true},
		{"1.2.3", ">1.2.3", false},
		{"1.2.2", "<1.2.3", true},
		{"1.2.3", "<1.2.3", false},

		{"1.2.3", "1.2.3", true},
		{"1.2.4", "1.2.3", false},

		{"1.2.3", "^not-a-version", false},
		{"1.2.3", ">=junk", false},
		{"1.2.3", "garbage", false},
	}

	for _, tt := range tests {
		t.Run(tt.version+"_"+tt.constraint, func(t *testing.T) {
			v, err := Parse(tt.version)
			if err != nil {
				t.Fatal(err)
			}
			if got := v.Satisfies(tt.constraint); got != tt.want {
				t.Errorf("Satisfies(%q, %q) = %v, want %v", tt.version, tt.constraint, got, tt.want)
			}
		})
	}
}

func TestStringCanonicalFallback(t *testing.T) {
	v := Version{Major: 1, Minor: 2, Patch: 3, Prerelease: "rc.1", Build: "b7"}
	if got := v.String(); got != "1.2.3-rc.1+b7" {
		t.Errorf("String() = %q, want %q", got, "1.2.3-rc.1+b7")
	}
}
