package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hmans/coursegraph/internal/seed"
	"github.com/hmans/coursegraph/internal/store"
	"github.com/hmans/coursegraph/internal/ui"
)

var (
	seedFile   string
	seedDryRun bool
)

var errSeedMemory = errors.New("seeding the memory store has no effect; set store.driver to sqlite or mongo, or pass --dry-run")

// checkSeedTarget refuses drivers whose data does not outlive the process.
func checkSeedTarget(driver string) error {
	if driver == "" || driver == store.DriverMemory {
		return errSeedMemory
	}
	return nil
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load sample users and courses into the store",
	Long: `Inserts users and courses from a YAML fixture file. Without --file, a small
built-in sample is used. Courses name their instructor by email; the instructor
must be a user in the same file or already in the store.

Examples:
  coursegraph seed
  coursegraph seed --file fixtures.yaml
  coursegraph seed --dry-run --file fixtures.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			f   *seed.Fixture
			err error
		)
		if seedFile != "" {
			f, err = seed.LoadFile(seedFile)
		} else {
			f, err = seed.Default()
		}
		if err != nil {
			return err
		}

		ctx := context.Background()
		if seedDryRun {
			res, err := seed.Load(ctx, store.NewMemory(), f)
			if err != nil {
				return fmt.Errorf("seeding: %w", err)
			}
			fmt.Println(ui.RenderSuccess(fmt.Sprintf("Fixture is valid: %d users and %d courses", res.Users, res.Courses)))
			return nil
		}

		if err := checkSeedTarget(cfg.Store.Driver); err != nil {
			return err
		}

		b, err := openBackend(ctx)
		if err != nil {
			return err
		}
		defer b.Close(context.Background())

		res, err := seed.Load(ctx, b.store, f)
		if err != nil {
			return fmt.Errorf("seeding: %w", err)
		}

		fmt.Println(ui.RenderSuccess(fmt.Sprintf("Seeded %d users and %d courses", res.Users, res.Courses)))
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "", "YAML fixture file (default: built-in sample)")
	seedCmd.Flags().BoolVar(&seedDryRun, "dry-run", false, "Load the fixture into a scratch memory store to check it, without touching the configured store")
	rootCmd.AddCommand(seedCmd)
}
