// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network
// requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// FetcherConfig holds settings for the metadata fetch stage.
type FetcherConfig struct {
	HTTPConfig `yaml:",inline"`

	// Type selects the fetch strategy: "simple_html" (default) or "docling".
	Type string `json:"type" yaml:"type"`

	// RetryTimes is the maximum number of attempts per fetch (default 3).
	RetryTimes int `json:"retry_times" yaml:"retry_times"`
}

// LLMConfig holds settings for the summarization stage.
type LLMConfig struct {
	// Provider selects the summarize strategy: "openai" (default) or "gemini".
	Provider string `json:"provider" yaml:"provider"`

	// Model is the model identifier; empty selects the provider default.
	Model string `json:"model,omitempty" yaml:"model,omitempty"`

	// APIKey is the provider authentication key. Never logged.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// BaseURL overrides the provider endpoint, for OpenAI-compatible relays.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`

	// Temperature is the sampling temperature (default 0.3).
	Temperature float64 `json:"temperature" yaml:"temperature"`

	// MaxTokens bounds the response size (default 1000).
	MaxTokens int `json:"max_tokens" yaml:"max_tokens"`

	// MaxRetries is the strategy's internal retry budget before a response
	// is surfaced as malformed (default 2).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// LinkFilterConfig holds settings for candidate-link filtering.
type LinkFilterConfig struct {
	// AllowedDomains is the set of hosts accepted as paper candidates, in
	// addition to the built-in academic and redirector domains.
	AllowedDomains []string `json:"allowed_domains" yaml:"allowed_domains"`
}

// ResolverConfig holds settings for URL canonicalization.
type ResolverConfig struct {
	HTTPConfig `yaml:",inline"`

	// MaxHops bounds the number of HTTP redirects followed (default 5).
	MaxHops int `json:"max_hops" yaml:"max_hops"`
}

// ReportConfig holds settings for report generation.
type ReportConfig struct {
	// Format selects the output format: "markdown" (default) or "html".
	Format string `json:"format" yaml:"format"`

	// SubjectTemplate is the mail subject; "{date}" is replaced with the
	// run date.
	SubjectTemplate string `json:"subject_template" yaml:"subject_template"`

	// MinRelevanceScore excludes completed papers scoring below it from
	// the ranked records. Zero disables the floor; the CLI defaults it
	// to 6.0.
	MinRelevanceScore float64 `json:"min_relevance_score" yaml:"min_relevance_score"`
}

// PipelineConfig holds batch-level orchestration settings.
type PipelineConfig struct {
	// MaxItems caps the number of identities processed per run (default 50).
	MaxItems int `json:"max_items" yaml:"max_items"`

	// Workers sizes the fetch/summarize worker pool (default 4).
	Workers int `json:"workers" yaml:"workers"`

	// Budget is the wall-clock budget for the batch; zero means no budget.
	// On expiry, in-flight items finish their current attempt and
	// un-started items are reported as skipped.
	Budget time.Duration `json:"budget" yaml:"budget"`
}

// MailboxConfig holds settings for the message-directory input adapter.
type MailboxConfig struct {
	// Dir is the mailbox root; new message bodies are read from Dir/new
	// and moved to Dir/cur once processed.
	Dir string `json:"dir" yaml:"dir"`

	// MarkProcessed controls whether consumed messages are moved to cur/.
	MarkProcessed bool `json:"mark_processed" yaml:"mark_processed"`
}

// MailConfig holds settings for sending the digest over SMTP.
type MailConfig struct {
	// Host is the SMTP server host (e.g. "smtp.gmail.com").
	Host string `json:"host" yaml:"host"`

	// Port is the SMTP server port (e.g. "587").
	Port string `json:"port" yaml:"port"`

	// From is the sender address; also the SMTP auth user.
	From string `json:"from" yaml:"from"`

	// To lists the recipient addresses.
	To []string `json:"to" yaml:"to"`

	// Password is the SMTP app password. Never logged.
	Password string `json:"password,omitempty" yaml:"password,omitempty"`
}

// SeenConfig holds settings for the cross-run seen-paper store.
type SeenConfig struct {
	// Enabled turns the store on; when off every run reports everything.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// DBDir is the directory holding the SQLite database file.
	DBDir string `json:"db_dir" yaml:"db_dir"`
}

// Config groups all stage configurations.
type Config struct {
	Fetcher    FetcherConfig    `json:"fetcher" yaml:"fetcher"`
	LLM        LLMConfig        `json:"llm" yaml:"llm"`
	LinkFilter LinkFilterConfig `json:"link_filter" yaml:"link_filter"`
	Resolver   ResolverConfig   `json:"resolver" yaml:"resolver"`
	Report     ReportConfig     `json:"report" yaml:"report"`
	Pipeline   PipelineConfig   `json:"pipeline" yaml:"pipeline"`
	Mailbox    MailboxConfig    `json:"mailbox" yaml:"mailbox"`
	Mail       MailConfig       `json:"mail" yaml:"mail"`
	Seen       SeenConfig       `json:"seen" yaml:"seen"`
}
