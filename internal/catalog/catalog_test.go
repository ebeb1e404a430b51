package catalog

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleSnapshot = `
packages:
  - id: app
    version: 1.0.0
    dependencies:
      - id: web
        constraint: "^1.0.0"
      - id: linter
        constraint: "^2.0.0"
        dev: true
  - id: web
    version: 1.4.2
    dependencies:
      - id: json
        constraint: "~1.2.0"
  - id: json
    source: movable
    ref: main
    available: [1.2.0, 1.2.5, 1.3.0, 2.0.0]
  - id: linter
    version: 2.1.0
  - id: broken-mirror
    version: 1.0.0
    unavailable: mirror offline
  - id: nightly
    source: movable
    ref: deadbeefdeadbeefdeadbeefdeadbeefdeadbeef
`

func parseSample(t *testing.T) *Catalog {
	t.Helper()
	cat, err := Parse(strings.NewReader(sampleSnapshot))
	require.NoError(t, err)
	return cat
}

func TestParseSnapshot(t *testing.T) {
	cat := parseSample(t)
	assert.Equal(t, 6, cat.Len())

	pkg, err := cat.PackageByID(context.Background(), "app")
	require.NoError(t, err)
	assert.Equal(t, SourceFixed, pkg.Source)
	require.Len(t, pkg.Dependencies, 2)
	assert.True(t, pkg.Dependencies[0].Required)
	assert.False(t, pkg.Dependencies[1].Required, "dev dependency must be non-required")
}

func TestParseRejectsBadSnapshots(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"empty id", "packages:\n  - version: 1.0.0\n"},
		{"duplicate id", "packages:\n  - id: a\n  - id: a\n"},
		{"unknown source", "packages:\n  - id: a\n    source: floating\n"},
		{"bad available version", "packages:\n  - id: a\n    source: movable\n    available: [nope]\n"},
		{"dependency without id", "packages:\n  - id: a\n    dependencies:\n      - constraint: \"^1.0.0\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestPackageByID(t *testing.T) {
	cat := parseSample(t)
	ctx := context.Background()

	_, err := cat.PackageByID(ctx, "nope")
	assert.True(t, IsNotFound(err), "want NotFoundError, got %v", err)

	_, err = cat.PackageByID(ctx, "broken-mirror")
	assert.True(t, IsUnavailable(err), "want UnavailableError, got %v", err)
	assert.Contains(t, err.Error(), "mirror offline")
}

func TestDependenciesFor(t *testing.T) {
	cat := parseSample(t)
	ctx := context.Background()

	deps, err := cat.DependenciesFor(ctx, "web")
	require.NoError(t, err)
	require.Len(t, deps, 1)
	assert.Equal(t, PackageID("json"), deps[0].Target)
	assert.Equal(t, "~1.2.0", deps[0].Constraint)

	deps, err = cat.DependenciesFor(ctx, "linter")
	require.NoError(t, err)
	assert.Empty(t, deps)

	_, err = cat.DependenciesFor(ctx, "nope")
	assert.True(t, IsNotFound(err))
}

func TestResolveConstraintPicksHighestSatisfying(t *testing.T) {
	cat := parseSample(t)
	ctx := context.Background()

	res, err := cat.ResolveConstraint(ctx, "json", "~1.2.0")
	require.NoError(t, err)
	assert.Equal(t, "1.2.5", res.BestVersion.String())
	assert.Equal(t, 4, res.Candidates)

	res, err = cat.ResolveConstraint(ctx, "json", "^1.2.0")
	require.NoError(t, err)
	assert.Equal(t, "1.3.0", res.BestVersion.String())

	res, err = cat.ResolveConstraint(ctx, "json", "*")
	require.NoError(t, err)
	assert.Equal(t, "2.0.0", res.BestVersion.String())
}

func TestResolveConstraintNoMatch(t *testing.T) {
	cat := parseSample(t)

	_, err := cat.ResolveConstraint(context.Background(), "json", "^3.0.0")
	require.Error(t, err)
	var nv *NoVersionError
	require.ErrorAs(t, err, &nv)
	assert.Equal(t, 4, nv.Candidates)
}

func TestResolveConstraintWithoutCandidatesFallsBackToReference(t *testing.T) {
	cat := parseSample(t)

	res, err := cat.ResolveConstraint(context.Background(), "nightly", "^1.0.0")
	require.NoError(t, err)
	assert.True(t, res.BestVersion.IsDevelopment())
	assert.Equal(t, "deadbee", res.BestVersion.Build)
}
