// Package report renders resolution plans, conflicts, cycle diagnostics and
// lockfile drift for people and for machines.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/rodaine/table"

	"github.com/frederic-klein/yapr/internal/catalog"
	"github.com/frederic-klein/yapr/internal/lockfile"
	"github.com/frederic-klein/yapr/internal/resolver"
	"github.com/frederic-klein/yapr/internal/semver"
)

var (
	headerColor  = color.New(color.FgCyan, color.Bold)
	successColor = color.New(color.FgGreen, color.Bold)
	warnColor    = color.New(color.FgYellow)
	errColor     = color.New(color.FgRed, color.Bold)
)

// PlanView renders a resolution plan.
type PlanView struct {
	w    io.Writer
	json bool
}

// NewPlanView creates a plan view writing to w.
func NewPlanView(w io.Writer, asJSON bool) *PlanView {
	return &PlanView{w: w, json: asJSON}
}

// Render writes the plan.
func (v *PlanView) Render(plan *resolver.Plan) error {
	if v.json {
		return v.renderJSON(plan)
	}
	v.renderHuman(plan)
	return nil
}

func (v *PlanView) renderHuman(plan *resolver.Plan) {
	fmt.Fprintln(v.w, headerColor.Sprintf("Resolution %s", plan.ID),
		fmt.Sprintf("root=%s packages=%d elapsed=%s", plan.Root.ID, plan.TotalPackages, plan.Duration))

	if len(plan.Resolved) > 0 {
		tbl := table.New("Package", "Version", "Constraint", "Required By", "Depth", "Direct").
			WithWriter(v.w).
			WithHeaderFormatter(headerColor.SprintfFunc())
		for _, rd := range plan.Resolved {
			tbl.AddRow(rd.Package.ID, rd.Version, rd.Dependency.Constraint, rd.RequiredBy, rd.Depth, rd.Direct)
		}
		tbl.Print()
	}

	for _, c := range plan.Conflicts {
		line := fmt.Sprintf("conflict: %s versions=%s requiredBy=%s (%s)",
			c.Package, joinVersions(c.Versions), joinIDs(c.RequiredBy), c.Suggestion)
		if c.Severity == resolver.SeverityError {
			fmt.Fprintln(v.w, errColor.Sprint("Error!"), line)
		} else {
			fmt.Fprintln(v.w, warnColor.Sprint("Warning:"), line)
		}
	}

	fmt.Fprintln(v.w, "install order:", joinIDs(plan.Order))
	if len(plan.Conflicts) == 0 {
		fmt.Fprintln(v.w, successColor.Sprint("Resolved!"), "no conflicts found.")
	}
}

type jsonResolved struct {
	Package    string `json:"package"`
	Version    string `json:"version"`
	Constraint string `json:"constraint,omitempty"`
	RequiredBy string `json:"requiredBy"`
	Depth      uint   `json:"depth"`
	Direct     bool   `json:"direct"`
}

type jsonConflict struct {
	Package    string   `json:"package"`
	Versions   []string `json:"versions"`
	RequiredBy []string `json:"requiredBy"`
	Severity   string   `json:"severity"`
	Suggestion string   `json:"suggestion"`
}

type jsonPlan struct {
	ID            string         `json:"id"`
	Root          string         `json:"root"`
	Resolved      []jsonResolved `json:"resolved"`
	Order         []string       `json:"installationOrder"`
	Conflicts     []jsonConflict `json:"conflicts"`
	TotalPackages int            `json:"totalPackages"`
	DurationMs    int64          `json:"resolutionTimeMs"`
}

func (v *PlanView) renderJSON(plan *resolver.Plan) error {
	out := jsonPlan{
		ID:            plan.ID.String(),
		Root:          string(plan.Root.ID),
		Resolved:      []jsonResolved{},
		Order:         idStrings(plan.Order),
		Conflicts:     []jsonConflict{},
		TotalPackages: plan.TotalPackages,
		DurationMs:    plan.Duration.Milliseconds(),
	}
	for _, rd := range plan.Resolved {
		out.Resolved = append(out.Resolved, jsonResolved{
			Package:    string(rd.Package.ID),
			Version:    rd.Version.String(),
			Constraint: rd.Dependency.Constraint,
			RequiredBy: string(rd.RequiredBy),
			Depth:      rd.Depth,
			Direct:     rd.Direct,
		})
	}
	for _, c := range plan.Conflicts {
		out.Conflicts = append(out.Conflicts, jsonConflict{
			Package:    string(c.Package),
			Versions:   versionStrings(c.Versions),
			RequiredBy: idStrings(c.RequiredBy),
			Severity:   string(c.Severity),
			Suggestion: c.Suggestion,
		})
	}
	return writeJSON(v.w, out)
}

// CyclesView renders cycle diagnostics.
type CyclesView struct {
	w    io.Writer
	json bool
}

// NewCyclesView creates a cycles view writing to w.
func NewCyclesView(w io.Writer, asJSON bool) *CyclesView {
	return &CyclesView{w: w, json: asJSON}
}

// Render writes the detected cycles.
func (v *CyclesView) Render(root catalog.PackageID, found [][]catalog.PackageID) error {
	if v.json {
		out := struct {
			Root   string     `json:"root"`
			Cycles [][]string `json:"cycles"`
		}{Root: string(root), Cycles: [][]string{}}
		for _, cycle := range found {
			out.Cycles = append(out.Cycles, idStrings(cycle))
		}
		return writeJSON(v.w, out)
	}

	if len(found) == 0 {
		fmt.Fprintln(v.w, successColor.Sprint("Acyclic!"), "no circular dependencies reachable from", root)
		return nil
	}
	for _, cycle := range found {
		fmt.Fprintln(v.w, errColor.Sprint("Cycle:"), strings.Join(idStrings(cycle), " -> "))
	}
	return nil
}

// VerifyView renders lockfile drift.
type VerifyView struct {
	w    io.Writer
	json bool
}

// NewVerifyView creates a verify view writing to w.
func NewVerifyView(w io.Writer, asJSON bool) *VerifyView {
	return &VerifyView{w: w, json: asJSON}
}

// Render writes the drift between a lockfile and a fresh resolution.
func (v *VerifyView) Render(drifts []lockfile.Drift) error {
	if v.json {
		out := struct {
			Status string          `json:"status"`
			Drift  []lockfileDrift `json:"drift"`
		}{Status: "ok", Drift: []lockfileDrift{}}
		if len(drifts) > 0 {
			out.Status = "drift"
		}
		for _, d := range drifts {
			out.Drift = append(out.Drift, lockfileDrift{
				Package: d.ID, Kind: string(d.Kind), Locked: d.Locked, Resolved: d.Resolved,
			})
		}
		return writeJSON(v.w, out)
	}

	if len(drifts) == 0 {
		fmt.Fprintln(v.w, successColor.Sprint("Verified!"), "lockfile matches a fresh resolution.")
		return nil
	}
	for _, d := range drifts {
		switch d.Kind {
		case lockfile.DriftVersion:
			fmt.Fprintln(v.w, warnColor.Sprint("Drift:"), d.ID, "locked", d.Locked, "resolved", d.Resolved)
		case lockfile.DriftMissing:
			fmt.Fprintln(v.w, errColor.Sprint("Missing:"), d.ID, "locked at", d.Locked, "no longer resolves")
		case lockfile.DriftAdded:
			fmt.Fprintln(v.w, warnColor.Sprint("Added:"), d.ID, "resolves to", d.Resolved, "but is not locked")
		}
	}
	return nil
}

type lockfileDrift struct {
	Package  string `json:"package"`
	Kind     string `json:"kind"`
	Locked   string `json:"locked,omitempty"`
	Resolved string `json:"resolved,omitempty"`
}

func writeJSON(w io.Writer, out interface{}) error {
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func joinVersions(versions []semver.Version) string {
	return strings.Join(versionStrings(versions), ", ")
}

func joinIDs(ids []catalog.PackageID) string {
	return strings.Join(idStrings(ids), ", ")
}

func idStrings(ids []catalog.PackageID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}

func versionStrings(versions []semver.Version) []string {
	out := make([]string, len(versions))
	for i, v := range versions {
		out[i] = v.String()
	}
	return out
}
