package repatch

import (
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"

	"github.com/arthur-debert/repatch/internal/version"
	"github.com/arthur-debert/repatch/pkg/config"
	"github.com/arthur-debert/repatch/pkg/core"
	"github.com/arthur-debert/repatch/pkg/errors"
	"github.com/arthur-debert/repatch/pkg/logging"
	"github.com/arthur-debert/repatch/pkg/patch"
	"github.com/arthur-debert/repatch/pkg/report"
	"github.com/arthur-debert/repatch/pkg/rules"
	"github.com/arthur-debert/repatch/pkg/target"
	"github.com/arthur-debert/repatch/pkg/types"
)

// app carries the global flags and lazily loaded configuration shared by
// every command.
type app struct {
	fs         afero.Fs
	verbosity  int
	configPath string
	format     string

	// overrides are configuration keys set by command flags.
	overrides map[string]interface{}
	cfg       *config.Config
}

// override sets a configuration key from a flag. It must be called before
// the configuration is first loaded.
func (a *app) override(key string, value interface{}) {
	if a.overrides == nil {
		a.overrides = make(map[string]interface{})
	}
	a.overrides[key] = value
}

func (a *app) config() (*config.Config, error) {
	if a.cfg == nil {
		if a.format != "" {
			a.override("output.format", a.format)
		}
		cfg, err := config.LoadWithOverrides(a.configPath, a.overrides)
		if err != nil {
			return nil, err
		}
		a.cfg = cfg
	}
	return a.cfg, nil
}

func (a *app) renderer(w io.Writer) (*report.Renderer, error) {
	cfg, err := a.config()
	if err != nil {
		return nil, err
	}
	format, err := report.ParseFormat(cfg.Output.Format)
	if err != nil {
		return nil, err
	}
	return report.New(w, format), nil
}

func (a *app) engine(cfg *config.Config) *patch.Engine {
	return patch.New(patch.WithMatchTimeout(cfg.Engine.Timeout))
}

func (a *app) store(cfg *config.Config) *target.Store {
	opts := []target.StoreOption{
		target.WithRetries(cfg.Write.Retries, cfg.Write.Delay),
	}
	if cfg.Backup.Strategy == config.BackupDir {
		opts = append(opts, target.WithBackupDir(cfg.Backup.Dir))
	} else {
		opts = append(opts, target.WithBackupSuffix(cfg.Backup.Suffix))
	}
	return target.NewStore(a.fs, opts...)
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	return newRootCmd(afero.NewOsFs())
}

func newRootCmd(fs afero.Fs) *cobra.Command {
	initTemplateFormatting()

	a := &app{fs: fs}

	rootCmd := &cobra.Command{
		Use:     "repatch",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(a.verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return errors.New(errors.ErrInvalidInput, "no command specified")
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	rootCmd.PersistentFlags().CountVarP(&a.verbosity, "verbose", "v", MsgFlagVerbose)
	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", MsgFlagConfig)
	rootCmd.PersistentFlags().StringVar(&a.format, "format", "", MsgFlagFormat)

	rootCmd.AddGroup(&cobra.Group{
		ID:    "core",
		Title: "COMMANDS:",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "misc",
		Title: "MISC:",
	})

	rootCmd.SetUsageTemplate(MsgUsageTemplate)

	rootCmd.AddCommand(newApplyCmd(a))
	rootCmd.AddCommand(newCheckCmd(a))
	rootCmd.AddCommand(newLintCmd(a))
	rootCmd.AddCommand(newLocateCmd(a))
	rootCmd.AddCommand(newGenConfigCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCompletionCmd())
	rootCmd.AddCommand(newManCmd())

	return rootCmd
}

// runFlags are the flags shared by apply and check.
type runFlags struct {
	target string
	dryRun bool
	vars   []string
	retry  int
	strict bool
}

func newApplyCmd(a *app) *cobra.Command {
	flags := &runFlags{}
	cmd := &cobra.Command{
		Use:     "apply <patchset>...",
		Short:   MsgApplyShort,
		Long:    MsgApplyLong,
		Example: MsgApplyExample,
		GroupID: "core",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPatchSets(cmd, a, flags, args)
		},
	}

	cmd.Flags().StringVarP(&flags.target, "target", "t", "", MsgFlagTarget)
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, MsgFlagDryRun)
	cmd.Flags().StringArrayVar(&flags.vars, "var", nil, MsgFlagVar)
	cmd.Flags().IntVar(&flags.retry, "retry", -1, MsgFlagRetry)
	cmd.Flags().BoolVar(&flags.strict, "strict", false, MsgFlagStrict)
	return cmd
}

func newCheckCmd(a *app) *cobra.Command {
	flags := &runFlags{dryRun: true, retry: -1}
	cmd := &cobra.Command{
		Use:     "check <patchset>...",
		Short:   MsgCheckShort,
		Long:    MsgCheckLong,
		GroupID: "core",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPatchSets(cmd, a, flags, args)
		},
	}

	cmd.Flags().StringVarP(&flags.target, "target", "t", "", MsgFlagTarget)
	cmd.Flags().StringArrayVar(&flags.vars, "var", nil, MsgFlagVar)
	cmd.Flags().BoolVar(&flags.strict, "strict", false, MsgFlagStrict)
	return cmd
}

func runPatchSets(cmd *cobra.Command, a *app, flags *runFlags, paths []string) error {
	if flags.retry >= 0 {
		a.override("write.retries", flags.retry)
	}
	cfg, err := a.config()
	if err != nil {
		return err
	}
	r, err := a.renderer(cmd.OutOrStdout())
	if err != nil {
		return err
	}
	overrides, err := rules.ParseAssignments(flags.vars)
	if err != nil {
		return err
	}

	engine := a.engine(cfg)
	store := a.store(cfg)
	// One value source for the whole invocation, so a key resolves to the
	// same value in every patch set.
	values := rules.NewValues(overrides)

	var results []*types.RunResult
	for _, path := range paths {
		set, err := rules.Load(a.fs, path)
		if err != nil {
			return err
		}

		setLogger := logging.WithFields(map[string]interface{}{
			"patchset": path,
			"name":     set.DisplayName(),
		})
		setLogger.Info().
			Str("target", flags.target).
			Bool("dryRun", flags.dryRun).
			Msg("Running patch set")

		result, err := core.Run(core.RunOptions{
			PatchSet: set,
			Locator:  target.NewLocator(a.fs, set.Target, target.WithExplicit(flags.target)),
			Store:    store,
			Engine:   engine,
			Values:   values,
			DryRun:   flags.dryRun,
		})
		if result != nil {
			if rerr := r.Render(result); rerr != nil {
				return rerr
			}
			results = append(results, result)
		}
		if err != nil {
			return err
		}
	}

	if len(results) > 1 {
		if err := r.RenderMessage(summarize(results, flags.dryRun)); err != nil {
			return err
		}
	}
	if flags.strict {
		return checkComplete(results)
	}
	return nil
}

// summarize counts the targets an invocation changed.
func summarize(results []*types.RunResult, dryRun bool) string {
	changed := 0
	for _, res := range results {
		if !res.Unchanged {
			changed++
		}
	}
	verb := "written"
	if dryRun {
		verb = "would change"
	}
	return fmt.Sprintf(MsgSummary, len(results), changed, verb, len(results)-changed)
}

// checkComplete fails when any rule was skipped or partial.
func checkComplete(results []*types.RunResult) error {
	incomplete, total := 0, 0
	for _, res := range results {
		total += len(res.Outcomes)
		incomplete += res.Count(patch.StatusSkipped) + res.Count(patch.StatusPartial)
	}
	if incomplete == 0 {
		return nil
	}
	return errors.Newf(errors.ErrIncomplete, MsgIncomplete, incomplete, total)
}

func newLintCmd(a *app) *cobra.Command {
	var vars []string
	cmd := &cobra.Command{
		Use:     "lint <patchset>...",
		Short:   MsgLintShort,
		Long:    MsgLintLong,
		GroupID: "core",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.config()
			if err != nil {
				return err
			}
			r, err := a.renderer(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			overrides, err := rules.ParseAssignments(vars)
			if err != nil {
				return err
			}

			loader := func(path string) (*rules.PatchSet, error) {
				return rules.Load(a.fs, path)
			}
			results := core.Lint(loader, a.engine(cfg), args, overrides)
			if err := r.RenderLint(results); err != nil {
				return err
			}

			failed := 0
			for _, res := range results {
				if !res.OK() {
					failed++
				}
			}
			if failed > 0 {
				return errors.Newf(errors.ErrRuleFile, "%d of %d patch sets failed lint", failed, len(results))
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&vars, "var", nil, MsgFlagVar)
	return cmd
}

func newLocateCmd(a *app) *cobra.Command {
	var explicit string
	cmd := &cobra.Command{
		Use:     "locate <patchset>",
		Short:   MsgLocateShort,
		Long:    MsgLocateLong,
		GroupID: "core",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.renderer(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			set, err := rules.Load(a.fs, args[0])
			if err != nil {
				return err
			}

			locator := target.NewLocator(a.fs, set.Target, target.WithExplicit(explicit))
			candidates, err := locator.Candidates()
			if err != nil {
				return err
			}
			found, locateErr := locator.Locate()

			if err := r.RenderLocate(report.LocateResult{Target: found, Candidates: candidates}); err != nil {
				return err
			}
			return locateErr
		},
	}

	cmd.Flags().StringVarP(&explicit, "target", "t", "", MsgFlagTarget)
	return cmd
}

func newGenConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "gen-config",
		Short:   MsgGenConfigShort,
		Long:    MsgGenConfigLong,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if _, err := fmt.Fprintf(out, MsgConfigPath, config.DefaultPath()); err != nil {
				return err
			}
			_, err := io.WriteString(out, config.DefaultContent())
			return err
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   MsgVersionShort,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), MsgVersionFormat, version.Version, version.Commit, version.Date)
		},
	}
}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:                   "completion [bash|zsh|fish|powershell]",
		Short:                 MsgCompletionShort,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		GroupID:               "misc",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
}

func newManCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "man",
		Short:   MsgManShort,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			header := &doc.GenManHeader{
				Title:   "REPATCH",
				Section: "1",
			}
			return doc.GenMan(cmd.Root(), header, cmd.OutOrStdout())
		},
	}
}

// ExitCode maps an error returned by the root command to a process exit
// status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.IsErrorCode(err, errors.ErrIncomplete):
		return 2
	default:
		return 1
	}
}
