package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// ServerConfig 网关 HTTP 服务配置
type ServerConfig struct {
	ListenAddr string `yaml:"listen_addr"` // 监听地址，默认 :8080
}

// VenueConfig 交易所（Polymarket CLOB）配置
type VenueConfig struct {
	ClobAddress   string `yaml:"clob_address"`   // CLOB API 地址
	ChainID       int    `yaml:"chain_id"`       // 链 ID（137=Polygon 主网）
	PrivateKey    string `yaml:"private_key"`    // 钱包私钥（hex），建议通过环境变量注入
	FunderAddress string `yaml:"funder_address"` // 代理钱包地址（可选）
	SignatureType int    `yaml:"signature_type"` // 签名类型（0=EOA, 1=Magic, 2=GnosisSafe）
	Proxy         string `yaml:"proxy"`          // 出口代理 URL（可选，例如 socks5h://127.0.0.1:9050）
	CredsPath     string `yaml:"creds_path"`     // API 凭证缓存目录（badger），为空则每次启动重新推导
}

// DiscoveryConfig 市场发现循环配置
type DiscoveryConfig struct {
	InitialCursor   string        `yaml:"initial_cursor"`   // 启动游标，跳过已知的陈旧市场
	RefreshInterval time.Duration `yaml:"refresh_interval"` // 列表扫描到末尾后的重新轮询间隔
}

// LogConfig 日志配置
type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// Config 应用配置
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Venue     VenueConfig     `yaml:"venue"`
	Discovery DiscoveryConfig `yaml:"discovery"`
	Log       LogConfig       `yaml:"log"`
}

// Default 返回带默认值的配置
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			ListenAddr: ":8080",
		},
		Venue: VenueConfig{
			ClobAddress:   "https://clob.polymarket.com",
			ChainID:       137,
			SignatureType: 1,
		},
		Discovery: DiscoveryConfig{
			// 启动游标：跳过目录头部早已结算的市场
			InitialCursor:   "MjIwMDA=",
			RefreshInterval: 10 * time.Second,
		},
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  100,
			MaxBackups: 5,
			MaxAgeDays: 14,
		},
	}
}

// Load 加载配置：默认值 <- YAML 文件（可选）<- 环境变量
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("解析配置文件失败: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv 环境变量覆盖（环境变量优先于文件）
func (c *Config) applyEnv() {
	setString(&c.Server.ListenAddr, "SERVER_LISTEN")
	setString(&c.Venue.ClobAddress, "CLOB_ADDRESS")
	setInt(&c.Venue.ChainID, "POLYMARKET_CHAIN_ID")
	setString(&c.Venue.PrivateKey, "POLYMARKET_PRIVATE_KEY")
	setString(&c.Venue.FunderAddress, "POLYMARKET_PUBLIC_KEY")
	setInt(&c.Venue.SignatureType, "POLYMARKET_SIGNATURE_TYPE")
	setString(&c.Venue.Proxy, "VENUE_PROXY")
	setString(&c.Venue.CredsPath, "VENUE_CREDS_PATH")
	setString(&c.Discovery.InitialCursor, "DISCOVERY_INITIAL_CURSOR")
	setDuration(&c.Discovery.RefreshInterval, "DISCOVERY_REFRESH_INTERVAL")
	setString(&c.Log.Level, "LOG_LEVEL")
	setString(&c.Log.File, "LOG_FILE")
}

// Validate 校验必填项
func (c *Config) Validate() error {
	if c.Venue.ClobAddress == "" {
		return fmt.Errorf("venue.clob_address 不能为空")
	}
	if c.Venue.ChainID <= 0 {
		return fmt.Errorf("venue.chain_id 无效: %d", c.Venue.ChainID)
	}
	if c.Discovery.RefreshInterval <= 0 {
		return fmt.Errorf("discovery.refresh_interval 必须为正: %v", c.Discovery.RefreshInterval)
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			*dst = d
		}
	}
}
