package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/gubarz/tripdoc/internal/llm"
)

// Config holds the application configuration
type Config struct {
	LLM          llm.Config     `mapstructure:"llm"`
	Unsplash     UnsplashConfig `mapstructure:"unsplash"`
	Image        ImageConfig    `mapstructure:"image"`
	SMTP         SMTPConfig     `mapstructure:"smtp"`
	Output       OutputConfig   `mapstructure:"output"`
	ProductLabel string         `mapstructure:"product_label"`
	LogLevel     string         `mapstructure:"log_level"`
}

// UnsplashConfig configures photo search
type UnsplashConfig struct {
	AccessKey string `mapstructure:"access_key"`
	BaseURL   string `mapstructure:"base_url"`
	Size      string `mapstructure:"size"`
}

// ImageConfig bounds image fetching and embedding
type ImageConfig struct {
	Concurrency int           `mapstructure:"concurrency"`
	Timeout     time.Duration `mapstructure:"timeout"`
	MaxWidth    int           `mapstructure:"max_width"`
}

// SMTPConfig configures email delivery
type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

// OutputConfig controls where finished documents go
type OutputConfig struct {
	Dir  string `mapstructure:"dir"`
	Mode string `mapstructure:"mode"`
}

// C is the global config instance
var C Config

// Init initializes configuration with viper
func Init() error {
	viper.SetDefault("llm.provider", "openai")
	viper.SetDefault("llm.model", "gpt-4o")
	viper.SetDefault("llm.base_url", "")
	viper.SetDefault("llm.api_key", "")
	viper.SetDefault("unsplash.access_key", "")
	viper.SetDefault("unsplash.base_url", "https://api.unsplash.com")
	viper.SetDefault("unsplash.size", "small")
	viper.SetDefault("image.concurrency", 4)
	viper.SetDefault("image.timeout", 15*time.Second)
	viper.SetDefault("image.max_width", 800)
	viper.SetDefault("smtp.host", "smtp.gmail.com")
	viper.SetDefault("smtp.port", 465)
	viper.SetDefault("smtp.username", "")
	viper.SetDefault("smtp.password", "")
	viper.SetDefault("smtp.from", "")
	viper.SetDefault("output.dir", ".")
	viper.SetDefault("output.mode", "file") // file, stdout or email
	viper.SetDefault("product_label", "Luxe Travel Guide")
	viper.SetDefault("log_level", "info")

	viper.SetConfigName("tripdoc")
	viper.SetConfigType("yaml")

	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(filepath.Join(home, ".config", "tripdoc"))
		viper.AddConfigPath(home)
	}
	viper.AddConfigPath(".")

	// TRIPDOC_LLM_API_KEY, TRIPDOC_SMTP_PASSWORD, ...
	viper.SetEnvPrefix("TRIPDOC")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Try to read config, but don't fail if not found or malformed
	_ = viper.ReadInConfig()

	return viper.Unmarshal(&C)
}

// GetOutputDir returns the output directory with tilde expansion
func GetOutputDir() string {
	return expandTilde(viper.GetString("output.dir"))
}

// expandTilde expands ~ to the user's home directory
func expandTilde(path string) string {
	if len(path) == 0 {
		return path
	}
	if path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// GetOutputMode returns the delivery mode
func GetOutputMode() string {
	return viper.GetString("output.mode")
}

// GetLogLevel returns the configured slog level name
func GetLogLevel() string {
	return viper.GetString("log_level")
}

// GetProductLabel returns the footer label
func GetProductLabel() string {
	return viper.GetString("product_label")
}

// GetImageConcurrency returns how many image lookups run at once
func GetImageConcurrency() int {
	return viper.GetInt("image.concurrency")
}

// GetImageTimeout returns the per stop image lookup timeout
func GetImageTimeout() time.Duration {
	return viper.GetDuration("image.timeout")
}

// GetImageMaxWidth returns the pixel width images are scaled down to
func GetImageMaxWidth() int {
	return viper.GetInt("image.max_width")
}

// SetOutputMode sets output mode at runtime
func SetOutputMode(mode string) {
	viper.Set("output.mode", mode)
	C.Output.Mode = mode
}

// SetOutputDir sets the output directory at runtime
func SetOutputDir(dir string) {
	viper.Set("output.dir", dir)
	C.Output.Dir = dir
}
