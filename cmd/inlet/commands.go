package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gitlab.com/tozd/go/errors"

	"github.com/inlet-lang/inlet/pkg/resolve"
	"github.com/inlet-lang/inlet/pkg/segment"
)

func delimsFrom(v *viper.Viper) segment.Delimiters {
	return segment.Delimiters{
		Open:  v.GetString("delim-open"),
		Close: v.GetString("delim-close"),
	}
}

func loadBuffer(fs afero.Fs, path string) (string, error) {
	content, err := afero.ReadFile(fs, path)
	if err != nil {
		return "", errors.Errorf("reading buffer %s: %w", path, err)
	}
	return string(content), nil
}

func loadContext(fs afero.Fs, v *viper.Viper) (resolve.Context, error) {
	path := v.GetString("context")
	if path == "" {
		return resolve.EmptyContext(), nil
	}
	content, err := afero.ReadFile(fs, path)
	if err != nil {
		return resolve.Context{}, errors.Errorf("reading context %s: %w", path, err)
	}
	var vars map[string]any
	if err := json.Unmarshal(content, &vars); err != nil {
		return resolve.Context{}, errors.Errorf("parsing context %s: %w", path, err)
	}
	return resolve.NewContext(vars), nil
}

func newSegmentsCommand(v *viper.Viper, fs afero.Fs) *cobra.Command {
	return &cobra.Command{
		Use:   "segments <file>",
		Short: "Print the static/resolvable segmentation of a buffer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			buffer, err := loadBuffer(fs, args[0])
			if err != nil {
				return err
			}
			for seg := range segment.Scan(buffer, delimsFrom(v)) {
				cmd.Printf("%-10s %4d:%-4d %q\n",
					seg.Kind, seg.Span.Offset, seg.Span.End(), seg.Raw)
			}
			return nil
		},
	}
}

func newResolveCommand(v *viper.Viper, fs afero.Fs) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <file>",
		Short: "Evaluate every resolvable segment against the data context",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			buffer, err := loadBuffer(fs, args[0])
			if err != nil {
				return err
			}
			data, err := loadContext(fs, v)
			if err != nil {
				return err
			}

			resolutions := resolve.New().ResolveAll(cmd.Context(), buffer, delimsFrom(v), data)
			for _, res := range resolutions {
				if res.Resolved() {
					cmd.Printf("%4d:%-4d %-12s %s\n",
						res.Segment.Span.Offset, res.Segment.Span.End(), res.State, res.Display)
					continue
				}
				cmd.Printf("%4d:%-4d %-12s %s\n",
					res.Segment.Span.Offset, res.Segment.Span.End(), res.State, res.Err.Msg)
			}
			if len(resolutions) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no resolvable segments")
			}
			return nil
		},
	}
}

func newPreviewCommand(v *viper.Viper, fs afero.Fs) *cobra.Command {
	return &cobra.Command{
		Use:   "preview <file>",
		Short: "Render the buffer with resolved values substituted in",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			buffer, err := loadBuffer(fs, args[0])
			if err != nil {
				return err
			}
			data, err := loadContext(fs, v)
			if err != nil {
				return err
			}

			resolutions := resolve.New().ResolveAll(cmd.Context(), buffer, delimsFrom(v), data)
			cmd.Println(resolve.Preview(buffer, resolutions))
			return nil
		},
	}
}
