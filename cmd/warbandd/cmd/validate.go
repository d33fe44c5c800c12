package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/argus-labs/warband/pkg/battle"
	"github.com/argus-labs/warband/pkg/battle/catalog"
)

const flagStrict = "strict"

func newValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "load templates and battlemasters and report rows that would be dropped",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := commandConfig(cmd)
			if err != nil {
				return err
			}
			strict, err := cmd.Flags().GetBool(flagStrict)
			if err != nil {
				return eris.Wrap(err, "failed to read strict flag")
			}
			return validate(cmd.Context(), cfg, cmd.OutOrStdout(), strict)
		},
	}
	addSourceFlags(cmd)
	cmd.Flags().Bool(flagStrict, false, "fail when any row is dropped or any battlemaster violation is found")
	return cmd
}

func validate(ctx context.Context, cfg daemonConfig, out io.Writer, strict bool) error {
	res := &resources{}
	defer func() { _ = res.close(context.Background()) }()

	world, err := catalog.LoadWorldDataFromFile(cfg.WorldDataFile)
	if err != nil {
		return err
	}
	src, err := openSource(ctx, cfg, res)
	if err != nil {
		return err
	}
	mgr, err := battle.NewManager(battle.Options{})
	if err != nil {
		return err
	}
	defer mgr.Close()

	report, err := mgr.LoadTemplates(ctx, src, world, world)
	if err != nil {
		return err
	}
	bmReport := mgr.LoadBattlemasters(world.BattlemasterRows(), world, world)

	fmt.Fprintf(out, "templates: %d loaded, %d dropped\n", report.Loaded, len(report.Errors))
	for _, e := range report.Errors {
		fmt.Fprintf(out, "  template %d: %v\n", e.TypeID, e.Err)
	}
	fmt.Fprintf(out, "battlemasters: %d assigned, %d dropped, %d violations\n",
		mgr.BattlemasterCount(), len(bmReport.Dropped), len(bmReport.Violations))
	for _, e := range bmReport.Dropped {
		fmt.Fprintf(out, "  battlemaster for %d: %v\n", e.TypeID, e.Err)
	}
	for _, v := range bmReport.Violations {
		fmt.Fprintf(out, "  creature %d: %s\n", v.Entry, v.Reason)
	}

	if !strict {
		return nil
	}
	var errs []error
	if n := len(report.Errors) + len(bmReport.Dropped); n > 0 {
		errs = append(errs, eris.Errorf("%d rows dropped", n))
	}
	if n := len(bmReport.Violations); n > 0 {
		errs = append(errs, eris.Errorf("%d battlemaster violations", n))
	}
	return errors.Join(errs...)
}
