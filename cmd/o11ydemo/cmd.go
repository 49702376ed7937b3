// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/z5labs/o11ydemo"
	"github.com/z5labs/o11ydemo/app"
	"github.com/z5labs/o11ydemo/appbuilder"
	"github.com/z5labs/o11ydemo/config"
	"github.com/z5labs/o11ydemo/service"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

//go:embed config.yaml
var defaultConfig []byte

func newCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:           "o11ydemo",
		Short:         "Serve the OpenTelemetry demo endpoints",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := loadDotEnv(".env")
			if err != nil {
				return err
			}

			return o11ydemo.Run(cmd.Context(), builder(), sources(configPath)...)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "YAML or JSON config file merged over the defaults")

	return cmd
}

func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func sources(path string) []config.Source {
	srcs := []config.Source{
		config.FromYaml(config.RenderTextTemplate(bytes.NewReader(defaultConfig))),
	}
	if path == "" {
		return srcs
	}

	r := config.RenderTextTemplate(config.NewFileReader(os.DirFS(filepath.Dir(path)), filepath.Base(path)))
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return append(srcs, config.FromJson(r))
	}
	return append(srcs, config.FromYaml(r))
}

func builder() o11ydemo.AppBuilder[service.Config] {
	return appbuilder.Recover(
		appbuilder.OTel[service.Config](
			o11ydemo.AppBuilderFunc[service.Config](func(ctx context.Context, cfg service.Config) (o11ydemo.App, error) {
				base, err := service.Build(ctx, cfg)
				if err != nil {
					return nil, err
				}
				return app.WithSignalNotifications(app.Recover(base), os.Interrupt, syscall.SIGTERM), nil
			}),
		),
	)
}
