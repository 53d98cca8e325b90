// Package config 负责加载和管理应用程序的配置。
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// 全局配置变量，由 Init 填充。
var Conf Config

// Config 与 configs/config.yaml 的结构对应。
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Log    LogConfig    `mapstructure:"log"`
	LLM    LLMConfig    `mapstructure:"llm"`
	JWT    JWTConfig    `mapstructure:"jwt"`
	Resume ResumeConfig `mapstructure:"resume"`
}

// ServerConfig 存储 HTTP 服务相关的配置。
type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

// LogConfig 存储日志相关的配置。
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

// LLMConfig 存储生成式模型相关的配置。
// Provider 可选 gemini、openai（OpenAI 兼容接口）或 dummy（脚本化桩模型）。
type LLMConfig struct {
	Provider    string              `mapstructure:"provider"`
	APIKey      string              `mapstructure:"api_key"`
	BaseURL     string              `mapstructure:"base_url"`
	Model       string              `mapstructure:"model"`
	Timeout     time.Duration       `mapstructure:"timeout"`
	Generation  LLMGenerationConfig `mapstructure:"generation"`
	DummyScript string              `mapstructure:"dummy_script"`
}

// LLMGenerationConfig 配置生成相关参数（可选，零值表示使用服务端默认值）。
type LLMGenerationConfig struct {
	Temperature float64 `mapstructure:"temperature"`
	TopP        float64 `mapstructure:"top_p"`
	MaxTokens   int     `mapstructure:"max_tokens"`
}

// JWTConfig 存储咨询会话令牌的配置。
type JWTConfig struct {
	Secret             string `mapstructure:"secret"`
	SessionExpireHours int    `mapstructure:"session_expire_hours"`
}

// ResumeConfig 控制简历合成结果的校验策略。
type ResumeConfig struct {
	// StrictGrounding 为 true 时，只要出现源文档中找不到的技能就丢弃整个结果。
	StrictGrounding bool `mapstructure:"strict_grounding"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("llm.provider", "gemini")
	v.SetDefault("llm.model", "gemini-2.5-flash")
	v.SetDefault("jwt.session_expire_hours", 24)
}

// Load 从指定路径读取 YAML 配置，并允许环境变量覆盖。
// API_KEY 直接映射到 llm.api_key，其余键使用 WORKBENCH_ 前缀（如 WORKBENCH_LLM_PROVIDER）。
func Load(configPath string) (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("WORKBENCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("llm.api_key", "WORKBENCH_LLM_API_KEY", "API_KEY"); err != nil {
		return Config{}, fmt.Errorf("绑定环境变量失败: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("读取配置文件失败: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("无法将配置解析到结构体中: %w", err)
	}
	return cfg, nil
}

// Init 加载配置到全局 Conf，失败时 panic。
func Init(configPath string) {
	cfg, err := Load(configPath)
	if err != nil {
		panic(err)
	}
	Conf = cfg
}
