package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"gopkg.in/yaml.v3"
)

// Config 配置
type Config struct {
	Service  ServiceConfig  `yaml:"service" json:"service"`
	Postgres PostgresConfig `yaml:"postgres" json:"postgres"`
	Redis    RedisConfig    `yaml:"redis" json:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka" json:"kafka"`
	Registry RegistryConfig `yaml:"registry" json:"registry"`
	Lottery  LotteryConfig  `yaml:"lottery" json:"lottery"`
	Log      LogConfig      `yaml:"log" json:"log"`
}

// ServiceConfig 服务配置
type ServiceConfig struct {
	Name     string `yaml:"name" json:"name"`
	HTTPPort int    `yaml:"http_port" json:"http_port"`
	Env      string `yaml:"env" json:"env"`
}

// PostgresConfig PostgreSQL 配置
type PostgresConfig struct {
	Host            string `yaml:"host" json:"host"`
	Port            int    `yaml:"port" json:"port"`
	Database        string `yaml:"database" json:"database"`
	User            string `yaml:"user" json:"user"`
	Password        string `yaml:"password" json:"password"`
	MaxConnections  int    `yaml:"max_connections" json:"max_connections"`
	MaxIdleConns    int    `yaml:"max_idle_conns" json:"max_idle_conns"`
	ConnMaxLifetime int    `yaml:"conn_max_lifetime" json:"conn_max_lifetime"`
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Addresses []string `yaml:"addresses" json:"addresses"`
	Password  string   `yaml:"password" json:"password"`
	DB        int      `yaml:"db" json:"db"`
	PoolSize  int      `yaml:"pool_size" json:"pool_size"`
}

// KafkaConfig Kafka 配置
type KafkaConfig struct {
	Brokers  []string `yaml:"brokers" json:"brokers"`
	GroupID  string   `yaml:"group_id" json:"group_id"`
	ClientID string   `yaml:"client_id" json:"client_id"`
}

// RegistryConfig 项目注册表配置
type RegistryConfig struct {
	// StartGlobalID 全局项目 ID 的起始值
	StartGlobalID uint64 `yaml:"start_global_id" json:"start_global_id"`
	// OwnerAddress 注册表所有者地址，仅该地址可创建项目
	OwnerAddress string `yaml:"owner_address" json:"owner_address"`
}

// Owner 返回注册表所有者地址
func (c *RegistryConfig) Owner() common.Address {
	return common.HexToAddress(c.OwnerAddress)
}

// LotteryConfig 开奖配置
type LotteryConfig struct {
	// RandomSource 随机源类型: fixed (固定值，用于开发/联调), crypto (密码学随机)
	RandomSource string `yaml:"random_source" json:"random_source"`
	// FixedValue fixed 随机源返回的常量
	FixedValue uint64 `yaml:"fixed_value" json:"fixed_value"`
	// DrawLockTTL 开奖分布式锁的超时秒数
	DrawLockTTL int `yaml:"draw_lock_ttl" json:"draw_lock_ttl"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
}

// Load 加载配置
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	// 环境变量替换
	content := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(content), &cfg); err != nil {
		return nil, err
	}

	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// expandEnvVars 展开环境变量 ${VAR:default}
func expandEnvVars(s string) string {
	result := s
	for {
		start := strings.Index(result, "${")
		if start == -1 {
			break
		}
		end := strings.Index(result[start:], "}")
		if end == -1 {
			break
		}
		end += start

		expr := result[start+2 : end]
		parts := strings.SplitN(expr, ":", 2)
		varName := parts[0]
		defaultVal := ""
		if len(parts) > 1 {
			defaultVal = parts[1]
		}

		value := os.Getenv(varName)
		if value == "" {
			value = defaultVal
		}

		result = result[:start] + value + result[end+1:]
	}
	return result
}

// setDefaults 设置默认值
func setDefaults(cfg *Config) {
	if cfg.Service.Name == "" {
		cfg.Service.Name = "luckpool-registry"
	}
	if cfg.Service.HTTPPort == 0 {
		cfg.Service.HTTPPort = 8086
	}
	if cfg.Service.Env == "" {
		cfg.Service.Env = "dev"
	}

	if cfg.Postgres.Port == 0 {
		cfg.Postgres.Port = 5432
	}
	if cfg.Postgres.MaxConnections == 0 {
		cfg.Postgres.MaxConnections = 50
	}
	if cfg.Postgres.MaxIdleConns == 0 {
		cfg.Postgres.MaxIdleConns = 10
	}
	if cfg.Postgres.ConnMaxLifetime == 0 {
		cfg.Postgres.ConnMaxLifetime = 3600
	}

	if cfg.Redis.PoolSize == 0 {
		cfg.Redis.PoolSize = 50
	}

	if cfg.Kafka.GroupID == "" {
		cfg.Kafka.GroupID = "luckpool-registry"
	}
	if cfg.Kafka.ClientID == "" {
		cfg.Kafka.ClientID = "luckpool-registry"
	}

	if cfg.Registry.StartGlobalID == 0 {
		cfg.Registry.StartGlobalID = 1
	}

	if cfg.Lottery.RandomSource == "" {
		cfg.Lottery.RandomSource = "fixed"
	}
	if cfg.Lottery.FixedValue == 0 {
		cfg.Lottery.FixedValue = 1234567890
	}
	if cfg.Lottery.DrawLockTTL == 0 {
		cfg.Lottery.DrawLockTTL = 30
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
}

// validate 校验配置
func validate(cfg *Config) error {
	if cfg.Registry.OwnerAddress == "" {
		return fmt.Errorf("registry.owner_address is required")
	}
	if !common.IsHexAddress(cfg.Registry.OwnerAddress) {
		return fmt.Errorf("registry.owner_address %q is not a valid address", cfg.Registry.OwnerAddress)
	}
	switch cfg.Lottery.RandomSource {
	case "fixed", "crypto":
	default:
		return fmt.Errorf("lottery.random_source %q is not supported", cfg.Lottery.RandomSource)
	}
	return nil
}

// GetEnvInt 获取环境变量整数值
func GetEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

// GetEnvString 获取环境变量字符串值
func GetEnvString(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
