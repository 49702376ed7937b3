// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package config reads layered configuration sources into a single
// key value store and decodes it into a Go struct.
//
// Sources are applied in order and later sources override earlier ones,
// key by key. Struct fields are matched with the `config` tag:
//
//	type Config struct {
//		HTTP struct {
//			Port uint `config:"port"`
//		} `config:"http"`
//	}
//
//	m, err := config.Read(
//		config.FromYaml(config.RenderTextTemplate(defaults, config.TemplateFunc("env", os.Getenv))),
//		config.FromYaml(userFile),
//	)
//	if err != nil {
//		return err
//	}
//
//	var cfg Config
//	err = m.Unmarshal(&cfg)
//
// Values implementing [encoding.TextUnmarshaler] and [time.Duration] values
// are decoded from their string representation.
package config
