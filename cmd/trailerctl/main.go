// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package main is trailerctl, the operator command line of the add-on. It
// resolves trailers with the same configuration as the server, without
// starting it.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/jaycherian/gcp-go-streailer/internal/cloud"
	"github.com/jaycherian/gcp-go-streailer/internal/telemetry"
)

var version = "1.0.0"

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "trailerctl",
	Short: "Streailer CLI - resolve trailers from the command line",
	Long: `trailerctl runs the trailer resolver of the Streailer add-on with the
add-on configuration and prints the results as JSON lines.

Examples:
  trailerctl resolve tt0111161
  trailerctl resolve tt7366338:4 --type series --locale fr-FR
  trailerctl resolve tt0111161 tt0068646 tt0071562 --parallel 3
  trailerctl locales
  trailerctl manifest`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		verbose, _ := cmd.Flags().GetBool("verbose")
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(telemetry.NewLogHandler(cmd.ErrOrStderr(), level)))
	},
}

func init() {
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(localesCmd)
	rootCmd.AddCommand(manifestCmd)

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().String("config-dir", "configs", "Configuration directory")
	rootCmd.PersistentFlags().String("runtime", cloud.DefaultRuntime, "Configuration runtime overlay")
}

// loadConfig reads the layered configuration selected by the persistent flags.
func loadConfig(cmd *cobra.Command, fs afero.Fs) (*cloud.Config, error) {
	dir, _ := cmd.Flags().GetString("config-dir")
	runtime, _ := cmd.Flags().GetString("runtime")
	if err := os.Setenv(cloud.EnvConfigFilePrefix, dir); err != nil {
		return nil, err
	}
	if err := os.Setenv(cloud.EnvConfigRuntime, runtime); err != nil {
		return nil, err
	}
	return cloud.Load(fs)
}
