// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"time"

	"github.com/spf13/viper"

	"github.com/Zhaoyilunnn/gmail-scholar-summary/internal/secrets"
	"github.com/Zhaoyilunnn/gmail-scholar-summary/pkg/types"
)

const defaultUserAgent = "scholar-summary/0.1"

func init() {
	viper.SetDefault("fetcher.type", "simple_html")
	viper.SetDefault("fetcher.timeout_sec", 30)
	viper.SetDefault("fetcher.retry_times", 3)
	viper.SetDefault("fetcher.user_agent", defaultUserAgent)
	viper.SetDefault("llm.provider", "openai")
	viper.SetDefault("llm.temperature", 0.3)
	viper.SetDefault("llm.max_tokens", 1000)
	viper.SetDefault("llm.max_retries", 2)
	viper.SetDefault("resolver.max_hops", 5)
	viper.SetDefault("resolver.timeout_sec", 10)
	viper.SetDefault("report.format", "markdown")
	viper.SetDefault("report.min_relevance_score", 6.0)
	viper.SetDefault("pipeline.max_items", 50)
	viper.SetDefault("pipeline.workers", 4)
	viper.SetDefault("mailbox.dir", "mailbox")
	viper.SetDefault("mailbox.mark_processed", true)
	viper.SetDefault("mail.host", "smtp.gmail.com")
	viper.SetDefault("mail.port", "587")
	viper.SetDefault("seen.enabled", true)
	viper.SetDefault("seen.db_dir", ".scholar-summary")
}

// buildConfig assembles the full configuration from viper (config file
// plus SCHOLAR_SUMMARY_* environment) and the secrets directory.
// Credentials resolve config-file values first, then secrets.
func buildConfig() types.Config {
	return types.Config{
		Fetcher: types.FetcherConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   time.Duration(viper.GetInt("fetcher.timeout_sec")) * time.Second,
				UserAgent: viper.GetString("fetcher.user_agent"),
			},
			Type:       viper.GetString("fetcher.type"),
			RetryTimes: viper.GetInt("fetcher.retry_times"),
		},
		LLM: types.LLMConfig{
			Provider:    viper.GetString("llm.provider"),
			Model:       viper.GetString("llm.model"),
			APIKey:      llmAPIKey(),
			BaseURL:     secretDefault(secrets.OpenAIBaseURL, viper.GetString("llm.base_url")),
			Temperature: viper.GetFloat64("llm.temperature"),
			MaxTokens:   viper.GetInt("llm.max_tokens"),
			MaxRetries:  viper.GetInt("llm.max_retries"),
		},
		LinkFilter: types.LinkFilterConfig{
			AllowedDomains: viper.GetStringSlice("link_filter.allowed_domains"),
		},
		Resolver: types.ResolverConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   time.Duration(viper.GetInt("resolver.timeout_sec")) * time.Second,
				UserAgent: viper.GetString("fetcher.user_agent"),
			},
			MaxHops: viper.GetInt("resolver.max_hops"),
		},
		Report: types.ReportConfig{
			Format:            viper.GetString("report.format"),
			SubjectTemplate:   viper.GetString("report.subject_template"),
			MinRelevanceScore: viper.GetFloat64("report.min_relevance_score"),
		},
		Pipeline: types.PipelineConfig{
			MaxItems: viper.GetInt("pipeline.max_items"),
			Workers:  viper.GetInt("pipeline.workers"),
			Budget:   time.Duration(viper.GetInt("pipeline.budget_sec")) * time.Second,
		},
		Mailbox: types.MailboxConfig{
			Dir:           viper.GetString("mailbox.dir"),
			MarkProcessed: viper.GetBool("mailbox.mark_processed"),
		},
		Mail: types.MailConfig{
			Host:     viper.GetString("mail.host"),
			Port:     viper.GetString("mail.port"),
			From:     viper.GetString("mail.from"),
			To:       viper.GetStringSlice("mail.to"),
			Password: secretDefault(secrets.SMTPPassword, viper.GetString("mail.password")),
		},
		Seen: types.SeenConfig{
			Enabled: viper.GetBool("seen.enabled"),
			DBDir:   viper.GetString("seen.db_dir"),
		},
	}
}

// llmAPIKey picks the credential matching the configured provider.
func llmAPIKey() string {
	if key := viper.GetString("llm.api_key"); key != "" {
		return key
	}
	if viper.GetString("llm.provider") == "gemini" {
		return secretDefault(secrets.GeminiAPIKey, "")
	}
	return secretDefault(secrets.OpenAIAPIKey, "")
}
