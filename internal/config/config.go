// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package config loads paper-digest.yaml into types.Config.
//
// Settings come, lowest precedence first, from built-in defaults, the
// config file, PAPER_DIGEST_* environment variables, files in the secrets
// directory (only for settings still empty) and the conventional provider
// variables such as LLM_API_KEY or WECOM_WEBHOOK.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	pkgerrors "github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/pdiddy/paper-digest/internal/discover"
	"github.com/pdiddy/paper-digest/pkg/types"
)

const (
	// FileName is the config file name searched for without extension.
	FileName = "paper-digest"

	// EnvPrefix prefixes environment variables that override config keys,
	// e.g. PAPER_DIGEST_ARXIV_QUERY for arxiv.query.
	EnvPrefix = "PAPER_DIGEST"
)

// ErrUnknownSource is returned when arxiv.source is neither rss nor api.
var ErrUnknownSource = discover.ErrUnknownSource

// Options controls where Load looks for settings.
type Options struct {
	// File is an explicit config file. When empty, paper-digest.yaml is
	// searched in the current directory and ~/.config/paper-digest/.
	File string

	// Secrets holds values loaded from the secrets directory.
	Secrets map[string]string

	// Getenv reads provider environment variables; defaults to os.Getenv.
	Getenv func(string) string
}

// Load reads, merges and validates the configuration. It returns the
// config file used ("" when none was found) alongside the result.
func Load(opts Options) (*types.Config, string, error) {
	v := viper.New()
	setDefaults(v)

	if opts.File != "" {
		v.SetConfigFile(opts.File)
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", FileName))
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if opts.File != "" || !errors.As(err, &notFound) {
			return nil, "", pkgerrors.Wrap(err, "reading config")
		}
	}

	var cfg types.Config
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "yaml"
	}); err != nil {
		return nil, "", pkgerrors.Wrap(err, "decoding config")
	}

	getenv := opts.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	applyOverrides(&cfg, opts.Secrets, getenv)
	applyChannelDefaults(&cfg)

	if errs := Validate(&cfg); len(errs) > 0 {
		return nil, v.ConfigFileUsed(), errors.Join(errs...)
	}
	return &cfg, v.ConfigFileUsed(), nil
}
