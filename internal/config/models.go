package config

import "os"

// GeminiConfig represents the configuration for Google Gemini
type GeminiConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxBodySize int
}

// OpenAIConfig represents the configuration for OpenAI
type OpenAIConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxBodySize int
}

// BedrockConfig represents the configuration for Amazon Bedrock
type BedrockConfig struct {
	Region      string
	ModelID     string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxBodySize int
}

// StoreConfig represents the configuration for the inbox store
type StoreConfig struct {
	Type       string
	SQLitePath string
	MySQLDSN   string
}

// ServerConfig represents the configuration for the HTTP server
type ServerConfig struct {
	ListenAddress string
}

// SMTPDConfig represents the configuration for the SMTP ingestion listener
type SMTPDConfig struct {
	Enabled       bool
	ListenAddress string
	Domain        string
}

// geminiKeySources are the environment variables consulted, in priority
// order, when no key is set in the config file.
var geminiKeySources = []string{"API_KEY", "GEMINI_API_KEY", "GOOGLE_API_KEY"}

// resolveGeminiAPIKey returns the configured key, else the first non-empty
// key source from the environment. An empty result disables the
// classifier entirely.
func resolveGeminiAPIKey(configured string) string {
	if configured != "" {
		return configured
	}
	for _, name := range geminiKeySources {
		if value := os.Getenv(name); value != "" {
			return value
		}
	}
	return ""
}

// GetLLMProvider returns the configured classifier provider name
func (c *Config) GetLLMProvider() string {
	return c.GetString("llm.provider")
}

// GetGemini returns the Gemini configuration
func (c *Config) GetGemini() GeminiConfig {
	return GeminiConfig{
		APIKey:      resolveGeminiAPIKey(c.GetString("gemini.api_key")),
		ModelName:   c.GetString("gemini.model_name"),
		MaxTokens:   c.GetInt("gemini.max_tokens"),
		Temperature: float32(c.GetFloat64("gemini.temperature")),
		TopP:        float32(c.GetFloat64("gemini.top_p")),
		MaxBodySize: c.GetInt("gemini.max_body_size"),
	}
}

// GetOpenAI returns the OpenAI configuration
func (c *Config) GetOpenAI() OpenAIConfig {
	return OpenAIConfig{
		APIKey:      c.GetString("openai.api_key"),
		ModelName:   c.GetString("openai.model_name"),
		MaxTokens:   c.GetInt("openai.max_tokens"),
		Temperature: float32(c.GetFloat64("openai.temperature")),
		TopP:        float32(c.GetFloat64("openai.top_p")),
		MaxBodySize: c.GetInt("openai.max_body_size"),
	}
}

// GetBedrock returns the Bedrock configuration
func (c *Config) GetBedrock() BedrockConfig {
	return BedrockConfig{
		Region:      c.GetString("bedrock.region"),
		ModelID:     c.GetString("bedrock.model_id"),
		MaxTokens:   c.GetInt("bedrock.max_tokens"),
		Temperature: float32(c.GetFloat64("bedrock.temperature")),
		TopP:        float32(c.GetFloat64("bedrock.top_p")),
		MaxBodySize: c.GetInt("bedrock.max_body_size"),
	}
}

// GetStore returns the inbox store configuration
func (c *Config) GetStore() StoreConfig {
	return StoreConfig{
		Type:       c.GetString("store.type"),
		SQLitePath: c.GetString("store.sqlite_path"),
		MySQLDSN:   c.GetString("store.mysql_dsn"),
	}
}

// GetServer returns the HTTP server configuration
func (c *Config) GetServer() ServerConfig {
	return ServerConfig{
		ListenAddress: c.GetString("server.listen_address"),
	}
}

// GetSMTPD returns the SMTP ingestion configuration
func (c *Config) GetSMTPD() SMTPDConfig {
	return SMTPDConfig{
		Enabled:       c.GetBool("smtpd.enabled"),
		ListenAddress: c.GetString("smtpd.listen_address"),
		Domain:        c.GetString("smtpd.domain"),
	}
}
