// Package cli implements skilltrackctl, the provisioning and maintenance command line for the
// training records store.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/yigit/skilltrack/internal/bootstrap"
	"github.com/yigit/skilltrack/internal/config"
)

var okLabel = color.New(color.FgGreen)
var errorLabel = color.New(color.FgRed)

type options struct {
	configFile string
	jsonOutput bool
}

// env is what every subcommand runs against
type env struct {
	cfg   *config.Config
	deps  *bootstrap.Dependencies
	close func()
}

// NewRootCmd builds the skilltrackctl command tree
func NewRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "skilltrackctl [command] [flags]",
		Short: "Provision users, skills and trainers and maintain the training records store",
		Long: `skilltrackctl manages the parts of the training records store that have no
command on the web transport: accounts, skills, trainer qualifications, schema
migrations and session housekeeping.

Examples:
  # Apply pending migrations
  skilltrackctl migrate

  # Create a user and qualify them to teach skill 2
  skilltrackctl user add --name "Tom Trainer" --login tom --password s3cret
  skilltrackctl trainer grant --user 1 --skill 2

  # Delete sessions older than a day
  skilltrackctl sessions prune --older-than 24h`,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	root.PersistentFlags().StringVar(&opts.configFile, "config", bootstrap.ConfigPath(), "Path to the configuration file")
	root.PersistentFlags().BoolVarP(&opts.jsonOutput, "json", "j", false, "Output in JSON format")

	root.AddCommand(
		newMigrateCmd(opts),
		newUserCmd(opts),
		newSkillCmd(opts),
		newTrainerCmd(opts),
		newSessionsCmd(opts),
		newSeedCmd(opts),
	)
	return root
}

// Execute runs the command tree and exits non-zero on failure
func Execute() {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		errorLabel.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// open loads the configuration and wires the services over the configured store
func (o *options) open(ctx context.Context) (*env, error) {
	cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger(o.configFile)
	if err != nil {
		return nil, err
	}
	store, closeStore, err := bootstrap.SetupStore(ctx, cfg, lgr)
	if err != nil {
		return nil, err
	}
	return &env{
		cfg:   cfg,
		deps:  bootstrap.BuildDependencies(cfg, store, lgr),
		close: closeStore,
	}, nil
}

// report prints a result either as JSON or as a green status line
func (o *options) report(w io.Writer, data map[string]any, format string, args ...any) error {
	if o.jsonOutput {
		out, err := json.MarshalIndent(data, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(out))
		return err
	}
	_, err := okLabel.Fprintf(w, format+"\n", args...)
	return err
}
