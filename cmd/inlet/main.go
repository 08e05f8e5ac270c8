package main

import (
	"context"
	"os"
	"runtime/debug"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gitlab.com/tozd/go/errors"
)

func main() {
	if err := run(); err != nil {
		println(err.Error())
		os.Exit(1)
	}
}

func run() error {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	ctx := logger.WithContext(context.Background())

	v := viper.New()
	v.SetEnvPrefix("INLET")
	v.AutomaticEnv()

	rootCmd := &cobra.Command{
		Use:   "inlet",
		Short: "Inspect resolvable expressions embedded in text buffers",
	}

	info, ok := debug.ReadBuildInfo()
	if !ok {
		rootCmd.Version = "unknown"
	} else {
		rootCmd.Version = info.Main.Version
	}

	flags := rootCmd.PersistentFlags()
	flags.String("delim-open", "{{", "opening delimiter of a resolvable span")
	flags.String("delim-close", "}}", "closing delimiter of a resolvable span")
	flags.String("context", "", "path to a JSON file with the data context")
	for _, name := range []string{"delim-open", "delim-close", "context"} {
		if err := v.BindPFlag(name, flags.Lookup(name)); err != nil {
			return errors.Errorf("binding flag %s: %w", name, err)
		}
	}

	fs := afero.NewOsFs()
	rootCmd.AddCommand(
		newSegmentsCommand(v, fs),
		newResolveCommand(v, fs),
		newPreviewCommand(v, fs),
	)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		return errors.Errorf("failed to execute command: %w", err)
	}
	return nil
}
