package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/sells-group/briefing-cli/internal/model"
)

var (
	runDomain  string
	runContext string
	runLead    string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Generate a briefing for a single lead",
	Long: `Runs the briefing pipeline once: gathers website and news intelligence
for the domain, looks up the campaign context, synthesizes the briefing, and
attaches it to the lead record. The response JSON is printed to stdout.

Examples:
  # Local lead store, sample contexts
  brief run --domain acme-corp.com --context ctx_q3_outbound --lead 00Q5f000001AbCd

  # Works without API keys; the briefing degrades to the fallback document
  brief run --domain example.com --context ctx_demo --lead lead-1`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initBriefing(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		resp, err := env.Pipeline.Run(ctx, model.BriefingRequest{
			CompanyDomain: runDomain,
			ContextID:     runContext,
			LeadID:        runLead,
		})
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	},
}

func init() {
	runCmd.Flags().StringVar(&runDomain, "domain", "", "company domain to research (required)")
	runCmd.Flags().StringVar(&runContext, "context", "", "campaign context ID (required)")
	runCmd.Flags().StringVar(&runLead, "lead", "", "lead record ID (required)")
	_ = runCmd.MarkFlagRequired("domain")
	_ = runCmd.MarkFlagRequired("context")
	_ = runCmd.MarkFlagRequired("lead")
	rootCmd.AddCommand(runCmd)
}
