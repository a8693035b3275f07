// Command wildlife-report evaluates an animal classifier by comparing its
// per-track predictions against hand-labelled ground truth.
//
// It scans a folder of stats files exported by the classifier, clusters the
// clips into visits (a visit is one continuous animal presence at a camera),
// and reports accuracy at track, clip, and visit level. Without -extended it
// prints a label-free summary of predicted visits, which needs no ground
// truth.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/banshee-data/wildlife.report/internal/config"
	"github.com/banshee-data/wildlife.report/internal/fsutil"
	"github.com/banshee-data/wildlife.report/internal/metrics"
	"github.com/banshee-data/wildlife.report/internal/monitoring"
	"github.com/banshee-data/wildlife.report/internal/report"
	"github.com/banshee-data/wildlife.report/internal/statsfile"
	"github.com/banshee-data/wildlife.report/internal/version"
	"github.com/banshee-data/wildlife.report/internal/visits"
)

var (
	sourceFolder = flag.String("source", "", "Folder containing stats files exported by the classifier")
	configPath   = flag.String("config", "", "Optional JSON config file")
	extended     = flag.Bool("extended", false, "Evaluate against pre-tagged ground truth instead of the label-free summary")
	gapSeconds   = flag.Float64("gap", 0, "Visit gap threshold in seconds (overrides config)")
	outDir       = flag.String("out", "", "Report output directory (overrides config)")
	camera       = flag.String("camera", "", "Also render an activity plot for this camera")
	showVersion  = flag.Bool("version", false, "Print version and exit")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("wildlife-report %s (%s, built %s)\n", version.Version, version.GitSHA, version.BuildTime)
		return
	}

	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	if err := run(fsutil.OSFileSystem{}, cfg, *extended, *camera, os.Stdout); err != nil {
		log.Fatalf("error: %v", err)
	}
}

// loadConfig builds the run configuration from the optional config file
// with command-line flags layered on top.
func loadConfig() (*config.EvalConfig, error) {
	cfg := config.EmptyEvalConfig()
	if *configPath != "" {
		loaded, err := config.LoadEvalConfig(*configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if *sourceFolder != "" {
		cfg.SourceFolder = sourceFolder
	}
	if *gapSeconds > 0 {
		cfg.VisitGapSeconds = gapSeconds
	}
	if *outDir != "" {
		cfg.ReportDir = outDir
	}

	if cfg.GetSourceFolder() == "" {
		return nil, fmt.Errorf("no source folder: pass -source or set source_folder in the config")
	}
	return cfg, nil
}

// run executes the whole pipeline: scan, cluster, evaluate, render.
// The batch is strictly sequential: all records load before clustering,
// all clustering completes before evaluation.
func run(fs fsutil.FileSystem, cfg *config.EvalConfig, extended bool, activityCamera string, out io.Writer) error {
	warnings := monitoring.NewWarningCounter()
	opts := visits.NewOptions(cfg.GetClasses(), cfg.GetNullTags())

	parsed, err := statsfile.ScanFolder(fs, cfg.GetSourceFolder(), cfg.GetTimezoneOffset(), warnings)
	if err != nil {
		return err
	}

	records := make([]*visits.ClipRecord, 0, len(parsed))
	for _, clip := range parsed {
		records = append(records, visits.NewClipRecord(clip, opts))
	}

	clusterer := visits.NewClusterer(cfg.GetVisitGap(), opts, warnings)
	clustered := clusterer.Cluster(records)
	if len(clustered) == 0 {
		return fmt.Errorf("clustering %d clips: %w", len(records), metrics.ErrNoData)
	}

	classes := cfg.GetClasses()
	reportDir := cfg.GetReportDir()

	var rep *report.Report
	if extended {
		results, err := metrics.Evaluate(clustered, classes)
		if err != nil {
			return err
		}
		rep = report.New(clustered, classes, results, warnings.Summary())
		rep.WriteEvaluation(out)
		if err := rep.RenderEvaluationHTML(fs, reportDir); err != nil {
			return err
		}
	} else {
		rep = report.New(clustered, classes, nil, warnings.Summary())
		rep.WriteSummary(out)
		if err := rep.RenderSummaryHTML(fs, reportDir); err != nil {
			return err
		}
	}

	if activityCamera != "" {
		if err := fs.MkdirAll(reportDir, 0755); err != nil {
			return err
		}
		path := filepath.Join(reportDir, activityCamera+"-activity.png")
		if err := rep.CameraActivityPNG(activityCamera, path); err != nil {
			return err
		}
	}

	if total := warnings.Total(); total > 0 {
		monitoring.Logf("run finished with %d warnings: %v", total, warnings.Summary())
	}
	return nil
}
