package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	App         AppConfig
	AzureOpenAI AzureOpenAIConfig
	AzureSearch AzureSearchConfig
	Databricks  DatabricksConfig
	Tracing     TracingConfig
}

type AppConfig struct {
	Port                string
	Environment         string
	LogFilePath         string
	LogLevel            string
	EmbeddingDimensions int
}

type AzureOpenAIConfig struct {
	Endpoint            string
	APIKey              string
	DeploymentName      string
	EmbeddingDeployment string
	APIVersion          string
}

type AzureSearchConfig struct {
	Endpoint  string
	APIKey    string
	IndexName string
}

type DatabricksConfig struct {
	Host           string
	Token          string
	VSEndpointName string
	VSIndexName    string
	TimeoutSeconds int
}

type TracingConfig struct {
	Enabled      bool
	OTLPEndpoint string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:                getEnv("APP_PORT", "8000"),
			Environment:         getEnv("GO_ENV", "development"),
			LogFilePath:         getEnv("LOG_FILE_PATH", "app.log"),
			LogLevel:            getEnv("LOG_LEVEL", "INFO"),
			EmbeddingDimensions: getEnvAsInt("EMBEDDING_DIMENSIONS", 512),
		},
		AzureOpenAI: AzureOpenAIConfig{
			Endpoint:            getEnv("AZURE_OPENAI_ENDPOINT", ""),
			APIKey:              getEnv("AZURE_OPENAI_API_KEY", ""),
			DeploymentName:      getEnv("AZURE_OPENAI_DEPLOYMENT_NAME", "gpt-4o-mini"),
			EmbeddingDeployment: getEnv("AZURE_OPENAI_EMBEDDING_DEPLOYMENT", "text-embedding-3-small"),
			APIVersion:          getEnv("AZURE_OPENAI_API_VERSION", "2024-10-21"),
		},
		AzureSearch: AzureSearchConfig{
			Endpoint:  getEnv("AZURE_SEARCH_ENDPOINT", ""),
			APIKey:    getEnv("AZURE_SEARCH_API_KEY", ""),
			IndexName: getEnv("AZURE_SEARCH_INDEX_NAME", "patents-index"),
		},
		Databricks: DatabricksConfig{
			Host:           getEnv("DATABRICKS_HOST", ""),
			Token:          getEnv("DATABRICKS_TOKEN", ""),
			VSEndpointName: getEnv("DATABRICKS_VS_ENDPOINT_NAME", ""),
			VSIndexName:    getEnv("DATABRICKS_VS_INDEX_NAME", ""),
			TimeoutSeconds: getEnvAsInt("DATABRICKS_TIMEOUT_SECONDS", 30),
		},
		Tracing: TracingConfig{
			Enabled:      getEnvAsBool("OTEL_ENABLED", false),
			OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
		},
	}
}

// placeholderMarkers flag credential values that were copied from an example
// env file rather than actually provisioned.
var placeholderMarkers = []string{"your-", "changeme", "example.com", "todo"}

func isPlaceholder(value string) bool {
	lower := strings.ToLower(value)
	for _, marker := range placeholderMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// usable reports whether every value is present and none looks like a
// placeholder.
func usable(values ...string) bool {
	for _, v := range values {
		if v == "" || isPlaceholder(v) {
			return false
		}
	}
	return true
}

// AzureOpenAIConfigured reports whether the text-generation backend has real
// credentials.
func (c *Config) AzureOpenAIConfigured() bool {
	return usable(c.AzureOpenAI.Endpoint, c.AzureOpenAI.APIKey)
}

// AzureSearchConfigured reports whether the patents search backend has real
// credentials.
func (c *Config) AzureSearchConfigured() bool {
	return usable(c.AzureSearch.Endpoint, c.AzureSearch.APIKey)
}

// DatabricksConfigured reports whether the engineering-docs search backend
// has real credentials.
func (c *Config) DatabricksConfigured() bool {
	return usable(c.Databricks.Host, c.Databricks.Token)
}

// TracingConfigured reports whether trace export is enabled.
func (c *Config) TracingConfigured() bool {
	return c.Tracing.Enabled && usable(c.Tracing.OTLPEndpoint)
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}
