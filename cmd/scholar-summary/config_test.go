// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestBuildConfig_Defaults(t *testing.T) {
	cfg := buildConfig()

	assert.Equal(t, "simple_html", cfg.Fetcher.Type)
	assert.Equal(t, 30*time.Second, cfg.Fetcher.Timeout)
	assert.Equal(t, 3, cfg.Fetcher.RetryTimes)
	assert.Equal(t, defaultUserAgent, cfg.Fetcher.UserAgent)
	assert.Equal(t, defaultUserAgent, cfg.Resolver.UserAgent)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, 0.3, cfg.LLM.Temperature)
	assert.Equal(t, 1000, cfg.LLM.MaxTokens)
	assert.Equal(t, 6.0, cfg.Report.MinRelevanceScore)
	assert.Equal(t, 50, cfg.Pipeline.MaxItems)
}

func TestBuildConfig_UserAgentOverride(t *testing.T) {
	viper.Set("fetcher.user_agent", "custom-agent/9.9")
	t.Cleanup(func() { viper.Set("fetcher.user_agent", defaultUserAgent) })

	cfg := buildConfig()
	assert.Equal(t, "custom-agent/9.9", cfg.Fetcher.UserAgent)
	assert.Equal(t, "custom-agent/9.9", cfg.Resolver.UserAgent, "resolver shares the configured agent")
}
