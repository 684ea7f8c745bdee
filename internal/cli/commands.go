package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/yigit/skilltrack/internal/bootstrap"
	"github.com/yigit/skilltrack/internal/app/migrations"
	"github.com/yigit/skilltrack/internal/config"
	"github.com/yigit/skilltrack/internal/db"
	"github.com/yigit/skilltrack/internal/seed"
)

func newMigrateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, _, err := bootstrap.LoadConfigAndSetupLogger(opts.configFile)
			if err != nil {
				return err
			}
			if cfg.Database.Driver != config.DriverPostgres {
				return fmt.Errorf("migrate needs the %q driver, configured driver is %q", config.DriverPostgres, cfg.Database.Driver)
			}

			database, err := db.NewPostgresDB(cfg)
			if err != nil {
				return err
			}
			defer database.Close()

			applied, err := migrations.NewMigrator(database.Pool).Migrate(ctx)
			if err != nil {
				return err
			}
			return opts.report(cmd.OutOrStdout(), map[string]any{"applied": applied}, "%d migration(s) applied", applied)
		},
	}
}

func newUserCmd(opts *options) *cobra.Command {
	userCmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
	}

	var name, login, password string
	addCmd := &cobra.Command{
		Use:   "add --name NAME --login LOGIN --password SECRET",
		Short: "Create a user account",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer e.close()

			id, err := e.deps.RegistryService.CreateUser(cmd.Context(), name, login, password)
			if err != nil {
				return err
			}
			return opts.report(cmd.OutOrStdout(), map[string]any{"id": id, "login": login}, "user %q created with id %d", login, id)
		},
	}
	addCmd.Flags().StringVar(&name, "name", "", "Full name")
	addCmd.Flags().StringVar(&login, "login", "", "Login name")
	addCmd.Flags().StringVar(&password, "password", "", "Password")
	_ = addCmd.MarkFlagRequired("name")
	_ = addCmd.MarkFlagRequired("login")
	_ = addCmd.MarkFlagRequired("password")

	userCmd.AddCommand(addCmd)
	return userCmd
}

func newSkillCmd(opts *options) *cobra.Command {
	skillCmd := &cobra.Command{
		Use:   "skill",
		Short: "Manage skills",
	}

	skillCmd.AddCommand(&cobra.Command{
		Use:   "add NAME",
		Short: "Create a skill",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer e.close()

			id, err := e.deps.RegistryService.CreateSkill(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return opts.report(cmd.OutOrStdout(), map[string]any{"id": id, "name": args[0]}, "skill %q created with id %d", args[0], id)
		},
	})

	skillCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List skills",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer e.close()

			skills, err := e.deps.RegistryService.ListSkills(cmd.Context())
			if err != nil {
				return err
			}
			if opts.jsonOutput {
				rows := make([]map[string]any, 0, len(skills))
				for _, s := range skills {
					rows = append(rows, map[string]any{"id": s.ID, "name": s.Name})
				}
				return opts.report(cmd.OutOrStdout(), map[string]any{"skills": rows}, "")
			}
			for _, s := range skills {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", s.ID, s.Name)
			}
			return nil
		},
	})
	return skillCmd
}

func newTrainerCmd(opts *options) *cobra.Command {
	trainerCmd := &cobra.Command{
		Use:   "trainer",
		Short: "Manage trainer qualifications",
	}

	var userID, skillID int64
	grantCmd := &cobra.Command{
		Use:   "grant --user ID --skill ID",
		Short: "Qualify a user to teach a skill",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer e.close()

			if err := e.deps.RegistryService.GrantTrainer(cmd.Context(), userID, skillID); err != nil {
				return err
			}
			return opts.report(cmd.OutOrStdout(), map[string]any{"user": userID, "skill": skillID}, "user %d may now teach skill %d", userID, skillID)
		},
	}
	grantCmd.Flags().Int64Var(&userID, "user", 0, "User id")
	grantCmd.Flags().Int64Var(&skillID, "skill", 0, "Skill id")
	_ = grantCmd.MarkFlagRequired("user")
	_ = grantCmd.MarkFlagRequired("skill")

	trainerCmd.AddCommand(grantCmd)
	return trainerCmd
}

func newSessionsCmd(opts *options) *cobra.Command {
	sessionsCmd := &cobra.Command{
		Use:   "sessions",
		Short: "Session housekeeping",
	}

	var olderThan time.Duration
	pruneCmd := &cobra.Command{
		Use:   "prune [--older-than DURATION]",
		Short: "Delete sessions older than a duration (defaults to session.max_age)",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer e.close()

			age := olderThan
			if age <= 0 {
				age = e.cfg.SessionMaxAge()
			}
			if age <= 0 {
				return fmt.Errorf("no age given and session.max_age disables expiry")
			}

			n, err := e.deps.SessionService.PruneOlderThan(cmd.Context(), age)
			if err != nil {
				return err
			}
			return opts.report(cmd.OutOrStdout(), map[string]any{"deleted": n}, "%d session(s) deleted", n)
		},
	}
	pruneCmd.Flags().DurationVar(&olderThan, "older-than", 0, "Minimum session age to delete")

	sessionsCmd.AddCommand(pruneCmd)
	return sessionsCmd
}

func newSeedCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create demonstration users, skills and classes in an empty store",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer e.close()

			res, err := seed.CreateDefaultData(cmd.Context(), e.deps.RegistryService, e.deps.ClassService, e.deps.Clock.Now(), e.deps.Logger)
			if err != nil {
				return err
			}
			return opts.report(cmd.OutOrStdout(),
				map[string]any{"users": res.Users, "skills": res.Skills, "classes": res.Classes},
				"seeded %d user(s), %d skill(s), %d class(es); password %q", res.Users, res.Skills, res.Classes, seed.DefaultPassword)
		},
	}
}
