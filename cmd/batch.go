package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/briefing-cli/internal/model"
)

var (
	batchFilePath   string
	batchCSVPath    string
	batchLimit      int
	batchConcurrent int
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Generate briefings for many leads in one invocation",
	Long: `Reads briefing jobs from a YAML job file or a CSV and runs each through
the pipeline. Per-job failures are logged and counted, never abort the batch.

Examples:
  # YAML job file with a top-level jobs: list
  brief batch --file jobs.yaml

  # CSV with header company_domain,context_id,lead_id
  brief batch --csv leads.csv --limit 10

  # Opt into concurrent processing
  brief batch --file jobs.yaml --concurrency 4`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if (batchFilePath == "") == (batchCSVPath == "") {
			return eris.New("batch: exactly one of --file or --csv is required")
		}

		var jobs []model.BriefingRequest
		var err error
		if batchFilePath != "" {
			jobs, err = loadJobsYAML(batchFilePath)
		} else {
			jobs, err = loadJobsCSV(batchCSVPath)
		}
		if err != nil {
			return err
		}

		env, err := initBriefing(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		summary := processBatch(ctx, jobs, batchLimit, batchConcurrent, env.Pipeline.Run)
		fmt.Fprintf(os.Stdout, "Processed %d jobs: %d succeeded, %d degraded, %d failed\n",
			summary.Total, summary.Succeeded, summary.Degraded, summary.Failed)
		return nil
	},
}

func init() {
	batchCmd.Flags().StringVar(&batchFilePath, "file", "", "YAML job file with a jobs: list of {company_domain, context_id, lead_id}")
	batchCmd.Flags().StringVar(&batchCSVPath, "csv", "", "CSV file with header company_domain,context_id,lead_id")
	batchCmd.Flags().IntVar(&batchLimit, "limit", 0, "max jobs to process (0 = all)")
	batchCmd.Flags().IntVar(&batchConcurrent, "concurrency", 1, "jobs to process concurrently")
	rootCmd.AddCommand(batchCmd)
}

// batchJob mirrors one entry of the YAML job file.
type batchJob struct {
	CompanyDomain string `yaml:"company_domain"`
	ContextID     string `yaml:"context_id"`
	LeadID        string `yaml:"lead_id"`
}

// batchFile is the YAML job file wrapper.
type batchFile struct {
	Jobs []batchJob `yaml:"jobs"`
}

// loadJobsYAML reads briefing jobs from a YAML job file.
func loadJobsYAML(path string) ([]model.BriefingRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "batch: read job file")
	}

	var bf batchFile
	if err := yaml.Unmarshal(data, &bf); err != nil {
		return nil, eris.Wrap(err, "batch: parse job file")
	}
	if len(bf.Jobs) == 0 {
		return nil, eris.Errorf("batch: no jobs in %s", path)
	}

	jobs := make([]model.BriefingRequest, 0, len(bf.Jobs))
	for _, j := range bf.Jobs {
		jobs = append(jobs, model.BriefingRequest{
			CompanyDomain: j.CompanyDomain,
			ContextID:     j.ContextID,
			LeadID:        j.LeadID,
		})
	}
	return jobs, nil
}

// loadJobsCSV reads briefing jobs from a CSV. The header names the columns;
// order does not matter, extra columns are ignored.
func loadJobsCSV(path string) ([]model.BriefingRequest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "batch: open csv")
	}
	defer f.Close() //nolint:errcheck

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, eris.Wrap(err, "batch: read csv header")
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"company_domain", "context_id", "lead_id"} {
		if _, ok := col[required]; !ok {
			return nil, eris.Errorf("batch: csv missing column %q", required)
		}
	}

	var jobs []model.BriefingRequest
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "batch: read csv row")
		}
		jobs = append(jobs, model.BriefingRequest{
			CompanyDomain: record[col["company_domain"]],
			ContextID:     record[col["context_id"]],
			LeadID:        record[col["lead_id"]],
		})
	}
	if len(jobs) == 0 {
		return nil, eris.Errorf("batch: no jobs in %s", path)
	}
	return jobs, nil
}

// briefFunc is the callback signature for generating one briefing.
type briefFunc func(ctx context.Context, req model.BriefingRequest) (*model.BriefingResponse, error)

// batchSummary tallies batch outcomes. Degraded counts responses that came
// back success but carry a fallback document or skipped the record store.
type batchSummary struct {
	Total     int
	Succeeded int
	Degraded  int
	Failed    int
}

// processBatch applies limit, then runs jobs through brief with bounded
// concurrency. Individual failures never abort the batch.
func processBatch(ctx context.Context, jobs []model.BriefingRequest, limit, concurrency int, brief briefFunc) batchSummary {
	var s batchSummary
	if len(jobs) == 0 {
		zap.L().Info("no batch jobs found")
		return s
	}

	if limit > 0 && len(jobs) > limit {
		jobs = jobs[:limit]
	}
	s.Total = len(jobs)

	if concurrency < 1 {
		concurrency = 1
	}

	zap.L().Info("processing batch",
		zap.Int("jobs", len(jobs)),
		zap.Int("concurrency", concurrency),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	var succeeded, degraded, failed atomic.Int64

	for _, job := range jobs {
		g.Go(func() error {
			log := zap.L().With(
				zap.String("lead_id", job.LeadID),
				zap.String("domain", job.CompanyDomain),
			)

			resp, err := brief(gctx, job)
			if err != nil {
				failed.Add(1)
				log.Error("briefing failed", zap.Error(err))
				return nil // don't abort batch on individual failure
			}

			switch {
			case resp.Status != model.StatusSuccess:
				failed.Add(1)
				log.Warn("briefing errored", zap.String("message", resp.Message))
			case resp.Briefing != nil && resp.Briefing.Error != "":
				degraded.Add(1)
				log.Warn("briefing degraded", zap.String("cause", resp.Briefing.Error))
			case !resp.Metadata.RecordStoreUpdated:
				degraded.Add(1)
				log.Warn("briefing generated but lead record not updated")
			default:
				succeeded.Add(1)
				log.Info("briefing complete",
					zap.Float64("processing_time_seconds", resp.Metadata.ProcessingTimeSeconds),
				)
			}
			return nil
		})
	}

	_ = g.Wait()

	s.Succeeded = int(succeeded.Load())
	s.Degraded = int(degraded.Load())
	s.Failed = int(failed.Load())

	zap.L().Info("batch complete",
		zap.Int("total", s.Total),
		zap.Int("succeeded", s.Succeeded),
		zap.Int("degraded", s.Degraded),
		zap.Int("failed", s.Failed),
	)
	return s
}
