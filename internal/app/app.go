// internal/app/app.go
package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"lastzrun/internal/appcore"
	"lastzrun/internal/apperr"
	"lastzrun/internal/cli"
	"lastzrun/internal/cmdutil"
	"lastzrun/internal/version"
)

const (
	name      = "lastzrun"
	envPrefix = "LASTZRUN"
)

// NewCommand builds the root command. Options are layered by viper:
// flags, then LASTZRUN_* environment variables, then the config file.
func NewCommand(stdout, stderr io.Writer) *cobra.Command {
	groups := cli.Register()
	v := viper.New()

	cmd := &cobra.Command{
		Use:           name,
		Short:         "Partition a lastz alignment by reference sequence and run it in parallel",
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) > 0 {
				return apperr.Configurationf("args", "unexpected arguments: %s", strings.Join(args, " "))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := loadConfig(v, cmd); err != nil {
				return err
			}
			o, err := cli.FromViper(v)
			if err != nil {
				return err
			}
			if err := cli.Validate(o); err != nil {
				return err
			}
			return appcore.Run(cmd.Context(), o, stdout, stderr)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetVersionTemplate(name + " {{.Version}}\n")

	for _, g := range groups {
		cmd.Flags().AddFlagSet(g.Flags)
	}
	cmd.SetHelpFunc(func(c *cobra.Command, _ []string) {
		cli.PrintUsage(c.OutOrStdout(), name, groups)
	})
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return apperr.Configuration("flags", err)
	})
	return cmd
}

func loadConfig(v *viper.Viper, cmd *cobra.Command) error {
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return apperr.Configuration("flags", err)
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return apperr.Configuration("config", err)
		}
		return nil
	}

	v.SetConfigName(name)
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/." + name)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return apperr.Configuration("config", err)
		}
	}
	return nil
}

// RunContext runs the CLI and returns the process exit code.
func RunContext(ctx context.Context, argv []string, stdout, stderr io.Writer) int {
	outw := bufio.NewWriter(stdout)
	cmd := NewCommand(outw, stderr)
	if len(argv) == 0 {
		argv = []string{"--help"}
	}
	cmd.SetArgs(argv)

	err := cmd.ExecuteContext(ctx)
	if ferr := cmdutil.Flush(outw); ferr != nil && err == nil {
		_, _ = fmt.Fprintln(stderr, ferr)
		return 3
	}
	if err == nil {
		return 0
	}
	_, _ = fmt.Fprintf(stderr, "%s: %v\n", name, err)
	if apperr.KindOf(err) == apperr.KindConfiguration {
		_, _ = fmt.Fprintf(stderr, "run '%s --help' for usage\n", name)
	}
	return apperr.ExitCode(err)
}

func Run(argv []string, stdout, stderr io.Writer) int {
	return RunContext(context.Background(), argv, stdout, stderr)
}
