package main

import (
	"context"
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/enrich-cli/internal/classify"
	"github.com/sells-group/enrich-cli/internal/model"
)

// codeSeeder is implemented by store backends that can bulk-load the
// approved-code table.
type codeSeeder interface {
	SeedApprovedCodes(ctx context.Context, codes []model.CandidateIndustryCode) (int64, error)
}

var codesCmd = &cobra.Command{
	Use:   "codes",
	Short: "Manage the approved industry-code taxonomy",
}

var codesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List approved industry codes",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		loader := classify.NewLoader(st, 0)
		tax, err := loader.Load(ctx)
		if err != nil {
			return eris.Wrap(err, "load taxonomy")
		}

		for _, c := range tax.Codes() {
			fmt.Printf("%s\t%s\n", c.Code, c.Description)
		}
		zap.L().Info("taxonomy listed", zap.Int("codes", tax.Len()))
		return nil
	},
}

var codesSeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the approved-code table from the embedded taxonomy",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		seed, err := classify.SeedTaxonomy()
		if err != nil {
			return eris.Wrap(err, "load embedded taxonomy")
		}

		seeder, ok := st.(codeSeeder)
		if !ok {
			return eris.New("store does not support seeding")
		}
		n, err := seeder.SeedApprovedCodes(ctx, seed.Codes())
		if err != nil {
			return eris.Wrap(err, "seed approved codes")
		}

		zap.L().Info("approved codes seeded", zap.Int64("rows", n))
		return nil
	},
}

func init() {
	codesCmd.AddCommand(codesListCmd)
	codesCmd.AddCommand(codesSeedCmd)
	rootCmd.AddCommand(codesCmd)
}
