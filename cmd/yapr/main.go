package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/frederic-klein/yapr/internal/catalog"
	"github.com/frederic-klein/yapr/internal/cycles"
	"github.com/frederic-klein/yapr/internal/lockfile"
	"github.com/frederic-klein/yapr/internal/metrics"
	"github.com/frederic-klein/yapr/internal/report"
	"github.com/frederic-klein/yapr/internal/resolver"
)

var (
	catalogPath  string
	includeDev   bool
	maxDepth     uint
	jsonOut      bool
	outputPath   string
	lockfilePath string
	metricsPath  string
	verbose      bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "yapr",
		Short: "Yet Another Package Resolver - computes dependency closures",
		Long:  "YAPR resolves the transitive dependency closure of a package over a catalog snapshot, detecting version conflicts and circular requirements and producing an installation order.",
	}

	rootCmd.PersistentFlags().StringVarP(&catalogPath, "catalog", "c", "./catalog.yaml", "Catalog snapshot path")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Render machine-readable JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")

	resolveCmd := &cobra.Command{
		Use:   "resolve <package>",
		Short: "Resolve the full dependency closure of a package",
		Args:  cobra.ExactArgs(1),
		RunE:  runResolve,
	}
	resolveCmd.Flags().BoolVarP(&includeDev, "include-dev", "d", false, "Resolve development-only dependencies")
	resolveCmd.Flags().UintVar(&maxDepth, "max-depth", resolver.DefaultMaxDepth, "Maximum dependency chain depth")
	resolveCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write the resolved plan as a lockfile")
	resolveCmd.Flags().StringVar(&metricsPath, "metrics-file", "", "Write resolution metrics in text exposition format")

	cyclesCmd := &cobra.Command{
		Use:   "cycles <package>",
		Short: "Report circular dependencies reachable from a package",
		Args:  cobra.ExactArgs(1),
		RunE:  runCycles,
	}

	verifyCmd := &cobra.Command{
		Use:   "verify <package>",
		Short: "Check a lockfile against a fresh resolution",
		Args:  cobra.ExactArgs(1),
		RunE:  runVerify,
	}
	verifyCmd.Flags().StringVarP(&lockfilePath, "lockfile", "l", "./yapr.lock", "Lockfile path")
	verifyCmd.Flags().BoolVarP(&includeDev, "include-dev", "d", false, "Resolve development-only dependencies")
	verifyCmd.Flags().UintVar(&maxDepth, "max-depth", resolver.DefaultMaxDepth, "Maximum dependency chain depth")

	rootCmd.AddCommand(resolveCmd, cyclesCmd, verifyCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	}
	return log
}

func loadRoot(cmd *cobra.Command, id string) (*catalog.Catalog, *catalog.Package, error) {
	cat, err := catalog.Load(catalogPath)
	if err != nil {
		return nil, nil, fmt.Errorf("loading catalog: %w", err)
	}
	root, err := cat.PackageByID(cmd.Context(), catalog.PackageID(id))
	if err != nil {
		return nil, nil, fmt.Errorf("finding root package: %w", err)
	}
	return cat, root, nil
}

func runResolve(cmd *cobra.Command, args []string) error {
	log := newLogger()
	rec := metrics.NewRecorder()

	cat, root, err := loadRoot(cmd, args[0])
	if err != nil {
		return err
	}

	res := resolver.New(cat, cat, cat, log)
	plan, err := res.Resolve(cmd.Context(), root, resolver.Options{
		IncludeDev: includeDev,
		MaxDepth:   maxDepth,
	})
	if err != nil {
		rec.RecordFailure()
		writeMetrics(rec, log)
		return fmt.Errorf("resolving %s: %w", root.ID, err)
	}

	rec.RecordSuccess(plan.TotalPackages, plan.Duration.Seconds())
	for _, c := range plan.Conflicts {
		rec.RecordConflict(string(c.Severity))
	}
	writeMetrics(rec, log)

	if err := report.NewPlanView(cmd.OutOrStdout(), jsonOut).Render(plan); err != nil {
		return fmt.Errorf("rendering plan: %w", err)
	}

	if outputPath != "" {
		if err := lockfile.FromPlan(plan).Save(outputPath); err != nil {
			return fmt.Errorf("writing lockfile: %w", err)
		}
		log.WithField("path", outputPath).Info("lockfile written")
	}

	if plan.HasErrors() {
		return fmt.Errorf("resolution produced %d conflict(s)", len(plan.Conflicts))
	}
	return nil
}

func runCycles(cmd *cobra.Command, args []string) error {
	log := newLogger()

	cat, root, err := loadRoot(cmd, args[0])
	if err != nil {
		return err
	}

	det := cycles.New(cat, cat, log)
	found := det.FindCircularDependencies(cmd.Context(), root)

	if err := report.NewCyclesView(cmd.OutOrStdout(), jsonOut).Render(root.ID, found); err != nil {
		return fmt.Errorf("rendering cycles: %w", err)
	}
	if len(found) > 0 {
		return fmt.Errorf("found %d circular dependency chain(s)", len(found))
	}
	return nil
}

func runVerify(cmd *cobra.Command, args []string) error {
	log := newLogger()

	lock, err := lockfile.Load(lockfilePath)
	if err != nil {
		return fmt.Errorf("loading lockfile: %w", err)
	}

	cat, root, err := loadRoot(cmd, args[0])
	if err != nil {
		return err
	}

	res := resolver.New(cat, cat, cat, log)
	plan, err := res.Resolve(cmd.Context(), root, resolver.Options{
		IncludeDev: includeDev,
		MaxDepth:   maxDepth,
	})
	if err != nil {
		return fmt.Errorf("resolving %s: %w", root.ID, err)
	}

	drifts := lock.Diff(plan)
	if err := report.NewVerifyView(cmd.OutOrStdout(), jsonOut).Render(drifts); err != nil {
		return fmt.Errorf("rendering drift: %w", err)
	}
	if len(drifts) > 0 {
		return fmt.Errorf("lockfile out of date: %d difference(s)", len(drifts))
	}
	return nil
}

func writeMetrics(rec *metrics.Recorder, log *logrus.Logger) {
	if metricsPath == "" {
		return
	}
	if err := rec.WriteFile(metricsPath); err != nil {
		log.WithError(err).Warn("writing metrics file")
	}
}
