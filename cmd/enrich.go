package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/enrich-cli/internal/progress"
)

var (
	enrichDomain   string
	enrichNameHint string
)

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Enrich a single company by domain",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEngine(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		result, err := env.Engine.Run(ctx, enrichDomain, enrichNameHint, progress.LogSink{})
		if err != nil {
			return eris.Wrap(err, "enrichment run")
		}

		zap.L().Info("enrichment complete",
			zap.String("domain", result.Domain),
			zap.String("revenue_band", string(result.RevenueBand)),
			zap.String("employee_band", string(result.EmployeeBand)),
			zap.Bool("icp_match", result.ICPMatch),
			zap.Float64("cost_usd", result.Cost.TotalUSD),
		)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

func init() {
	enrichCmd.Flags().StringVar(&enrichDomain, "domain", "", "company domain (required)")
	enrichCmd.Flags().StringVar(&enrichNameHint, "name", "", "company name hint")
	_ = enrichCmd.MarkFlagRequired("domain")
	rootCmd.AddCommand(enrichCmd)
}
