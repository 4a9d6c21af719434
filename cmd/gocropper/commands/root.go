/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package commands holds the gocropper command tree.
package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"gocropper/internal/config"
	"gocropper/internal/crash"
	"gocropper/internal/geom"
	applog "gocropper/internal/log"
	"gocropper/internal/selection"
	"gocropper/internal/storage"
)

// session is what a crash report records about the command that was running.
var session = &crash.Info{}

// Session returns the crash info the running command keeps current.
func Session() *crash.Info { return session }

type app struct {
	configPath string
	logLevel   string

	cfg config.AppConfig
	log *slog.Logger
}

// NewRootCmd builds a fresh command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "gocropper",
		Short:         "Crop selection with live previews",
		Long:          "gocropper selects a crop rectangle on an image, interactively or by replaying a gesture script, and renders its previews.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "config file (default is the user config)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: debug|info|warn|error")

	root.AddCommand(
		newVersionCmd(),
		newMeasureCmd(a),
		newReplayCmd(a),
		newPreviewCmd(a),
		newUICmd(a),
		newCacheCmd(a),
		newConfigCmd(a),
	)
	return root
}

// Execute runs the command tree on os.Args and returns the process exit code.
func Execute() int {
	if err := NewRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}

func (a *app) setup(cmd *cobra.Command) error {
	var (
		cfg    config.AppConfig
		cfgErr error
	)
	if a.configPath != "" {
		cfg, cfgErr = config.LoadFile(a.configPath)
	} else {
		cfg, cfgErr = config.Load()
	}
	a.cfg = cfg

	opts := cfg.Logging.Options().Merge(applog.FromEnv())
	if a.logLevel != "" {
		opts.Level = strings.ToLower(a.logLevel)
	}
	opts.Writer = cmd.ErrOrStderr()
	applog.Init(opts)
	a.log = applog.WithComponent("cli")
	if cfgErr != nil {
		// a broken config file is not fatal: defaults and environment still apply
		a.log.Warn("config not applied", slog.Any("err", cfgErr))
	}
	a.log.Debug("start", slog.String("cmd", cmd.CommandPath()))
	return nil
}

// selectionOptions returns the configured cropper options, with aspect overriding the
// configured ratio when set.
func (a *app) selectionOptions(aspect string) (selection.Options, error) {
	o := a.cfg.Cropper.Options()
	if aspect != "" {
		r, err := geom.ParseAspectRatio(aspect)
		if err != nil {
			return o, err
		}
		o.AspectRatio = r
	}
	return o, nil
}

func (a *app) openCache(ctx context.Context) (*storage.Cache, error) {
	path, err := a.cfg.CachePath()
	if err != nil {
		return nil, err
	}
	return storage.Open(ctx, path, a.cfg.Cache.MaxBytes)
}
