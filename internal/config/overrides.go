// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package config

import (
	"github.com/pdiddy/paper-digest/internal/secrets"
	"github.com/pdiddy/paper-digest/pkg/types"
)

// override binds one setting to its secrets file and to the provider
// environment variables that replace it, first match wins.
type override struct {
	secret string
	env    []string
	field  func(*types.Config) *string
}

var overrides = []override{
	{secrets.LLMAPIKey, []string{"LLM_API_KEY", "OPENAI_API_KEY"}, func(c *types.Config) *string { return &c.LLM.APIKey }},
	{"", []string{"LLM_MODEL", "OPENAI_MODEL"}, func(c *types.Config) *string { return &c.LLM.Model }},
	{"", []string{"LLM_BASE_URL", "OPENAI_BASE_URL"}, func(c *types.Config) *string { return &c.LLM.BaseURL }},
	{secrets.ZoteroLibraryID, []string{"ZOTERO_ID"}, func(c *types.Config) *string { return &c.Corpus.Zotero.LibraryID }},
	{secrets.ZoteroAPIKey, []string{"ZOTERO_KEY"}, func(c *types.Config) *string { return &c.Corpus.Zotero.APIKey }},
	{"", []string{"ZOTERO_LIBRARY_TYPE"}, func(c *types.Config) *string { return &c.Corpus.Zotero.LibraryType }},
}

// webhookOverride binds a channel kind to its secret file and variables.
type webhookOverride struct {
	kind   types.ChannelKind
	secret string
	env    []string
}

var webhookOverrides = []webhookOverride{
	{types.ChannelWeCom, secrets.WeComWebhook, []string{"WECOM_WEBHOOK", "WECHAT_WEBHOOK", "WECHAT_WORK_WEBHOOK"}},
	{types.ChannelFeishu, secrets.FeishuWebhook, []string{"FEISHU_WEBHOOK", "LARK_WEBHOOK"}},
}

func applyOverrides(cfg *types.Config, files map[string]string, getenv func(string) string) {
	for _, o := range overrides {
		resolve(o.field(cfg), o.secret, o.env, files, getenv)
	}
	for _, o := range webhookOverrides {
		url := webhookURL(cfg, o.kind)
		if url == nil {
			var probe string
			resolve(&probe, o.secret, o.env, files, getenv)
			if probe == "" {
				continue
			}
			cfg.Delivery.Channels = append(cfg.Delivery.Channels, types.ChannelConfig{Name: string(o.kind), Kind: o.kind, WebhookURL: probe})
			continue
		}
		resolve(url, o.secret, o.env, files, getenv)
	}
}

// resolve fills an empty field from the secrets file, then lets the first
// set environment variable replace it.
func resolve(field *string, secret string, env []string, files map[string]string, getenv func(string) string) {
	if *field == "" && secret != "" {
		if v, ok := files[secret]; ok {
			*field = v
		}
	}
	for _, name := range env {
		if v := getenv(name); v != "" {
			*field = v
			return
		}
	}
}

// webhookURL returns the URL field of the first channel of kind.
func webhookURL(cfg *types.Config, kind types.ChannelKind) *string {
	for i := range cfg.Delivery.Channels {
		if cfg.Delivery.Channels[i].Kind == kind {
			return &cfg.Delivery.Channels[i].WebhookURL
		}
	}
	return nil
}
