// internal/pkg/bootstrap/config.go
package bootstrap

import (
	"os"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"fundgate/internal/pkg/logger"
	"fundgate/internal/pkg/tracing"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config 是所有服务共享的配置结构，对应 configs/config.yaml
type Config struct {
	Service     ServiceConfig     `yaml:"service"`
	Log         logger.Config     `yaml:"log"`
	Tracing     tracing.Config    `yaml:"tracing"`
	Supabase    SupabaseConfig    `yaml:"supabase"`
	Store       StoreConfig       `yaml:"store"`
	Redis       RedisConfig       `yaml:"redis"`
	Zookeeper   ZookeeperConfig   `yaml:"zookeeper"`
	ReviewGuard ReviewGuardConfig `yaml:"review_guard"`
	Kafka       KafkaConfig       `yaml:"kafka"`
	Nacos       NacosConfig       `yaml:"nacos"`
	Promotion   PromotionConfig   `yaml:"promotion"`
	Pricing     PricingConfig     `yaml:"pricing"`
}

type ServiceConfig struct {
	Name            string        `yaml:"name"`
	Port            int           `yaml:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	AllowedOrigins  []string      `yaml:"allowed_origins"`
}

type SupabaseConfig struct {
	URL                 string        `yaml:"url"`
	ServiceKey          string        `yaml:"service_key"`
	JWTSecret           string        `yaml:"jwt_secret"`
	ProofBucket         string        `yaml:"proof_bucket"`
	FallbackProofBucket string        `yaml:"fallback_proof_bucket"`
	Timeout             time.Duration `yaml:"timeout"`
	Realtime            bool          `yaml:"realtime"`
}

// StoreConfig 选择关系型存储的实现：supabase（远端 BaaS）或 mysql（自有后端）
type StoreConfig struct {
	Driver   string `yaml:"driver"`
	MySQLDSN string `yaml:"mysql_dsn"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type ZookeeperConfig struct {
	Servers        []string      `yaml:"servers"`
	SessionTimeout time.Duration `yaml:"session_timeout"`
}

// ReviewGuardConfig 控制审核防重：redis / zookeeper / none
type ReviewGuardConfig struct {
	Backend string        `yaml:"backend"`
	TTL     time.Duration `yaml:"ttl"`
}

type KafkaConfig struct {
	Brokers       []string `yaml:"brokers"`
	EventsTopic   string   `yaml:"events_topic"`
	ConsumerGroup string   `yaml:"consumer_group"`
}

type NacosConfig struct {
	ServerAddrs string `yaml:"server_addrs"`
	Namespace   string `yaml:"namespace"`
	Group       string `yaml:"group"`
	DataID      string `yaml:"data_id"`
	Register    bool   `yaml:"register"`
}

type PromotionConfig struct {
	CodeLength      int    `yaml:"code_length"`
	EligibilityRule string `yaml:"eligibility_rule"`
}

// PricingConfig 保存各套餐的价格，金额用字符串避免浮点误差
type PricingConfig struct {
	Plans map[string]map[string]string `yaml:"plans"`
}

var current atomic.Pointer[Config]

// GetCurrentConfig 返回当前生效的配置。Nacos 推送变更后会被整体替换。
func GetCurrentConfig() *Config {
	if cfg := current.Load(); cfg != nil {
		return cfg
	}
	return Defaults()
}

// SetCurrentConfig 替换当前配置
func SetCurrentConfig(cfg *Config) {
	current.Store(cfg)
}

// Defaults 返回本地开发用的默认配置
func Defaults() *Config {
	return &Config{
		Service: ServiceConfig{
			Name:            "wallet-service",
			Port:            8080,
			ShutdownTimeout: 10 * time.Second,
			AllowedOrigins:  []string{"*"},
		},
		Log:     logger.Config{Level: "info"},
		Tracing: tracing.Config{Endpoint: "http://localhost:14268/api/traces"},
		Supabase: SupabaseConfig{
			ProofBucket:         "deposit-proofs",
			FallbackProofBucket: "payment-proofs",
			Timeout:             30 * time.Second,
		},
		Store:       StoreConfig{Driver: "supabase"},
		Redis:       RedisConfig{Addr: "localhost:6379"},
		Zookeeper:   ZookeeperConfig{Servers: []string{"localhost:2181"}, SessionTimeout: 5 * time.Second},
		ReviewGuard: ReviewGuardConfig{Backend: "redis", TTL: 30 * time.Second},
		Kafka: KafkaConfig{
			Brokers:       []string{"localhost:9092"},
			EventsTopic:   "wallet-events",
			ConsumerGroup: "notification-group",
		},
		Nacos:     NacosConfig{Group: "DEFAULT_GROUP"},
		Promotion: PromotionConfig{CodeLength: 8, EligibilityRule: `billing_cycle == "annual"`},
		Pricing: PricingConfig{Plans: map[string]map[string]string{
			"premium":   {"monthly": "5000", "annual": "50000"},
			"exclusive": {"monthly": "10000", "annual": "100000"},
		}},
	}
}

// LoadConfig 读取 YAML 文件（不存在时使用默认值），再叠加环境变量
func LoadConfig(path string) (*Config, error) {
	cfg := Defaults()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrapf(err, "parse config %s", path)
		}
	case os.IsNotExist(err):
		logger.L().Warn().Str("path", path).Msg("config file not found, using defaults")
	default:
		return nil, errors.Wrapf(err, "read config %s", path)
	}

	applyEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// MergeYAML 在已有配置上叠加一段 YAML，用于配置中心推送
func MergeYAML(base *Config, content string) (*Config, error) {
	merged := *base
	// map 是引用类型，先拷贝一份，避免远端配置污染 base
	merged.Pricing.Plans = make(map[string]map[string]string, len(base.Pricing.Plans))
	for plan, cycles := range base.Pricing.Plans {
		merged.Pricing.Plans[plan] = make(map[string]string, len(cycles))
		for cycle, price := range cycles {
			merged.Pricing.Plans[plan][cycle] = price
		}
	}
	if err := yaml.Unmarshal([]byte(content), &merged); err != nil {
		return nil, errors.Wrap(err, "parse remote config")
	}
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return &merged, nil
}

// Validate 检查启动所必需的配置项
func (c *Config) Validate() error {
	if c.Service.Port <= 0 {
		return errors.Errorf("invalid service port %d", c.Service.Port)
	}
	switch c.Store.Driver {
	case "supabase", "mysql":
	default:
		return errors.Errorf("unknown store driver %q", c.Store.Driver)
	}
	if c.Store.Driver == "mysql" && c.Store.MySQLDSN == "" {
		return errors.New("store.mysql_dsn is required when store.driver is mysql")
	}
	switch c.ReviewGuard.Backend {
	case "redis", "zookeeper", "none":
	default:
		return errors.Errorf("unknown review guard backend %q", c.ReviewGuard.Backend)
	}
	if c.Promotion.CodeLength <= 0 {
		return errors.New("promotion.code_length must be positive")
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.Service.Name = getEnv("SERVICE_NAME", cfg.Service.Name)
	cfg.Service.Port = getEnvInt("SERVICE_PORT", cfg.Service.Port)
	cfg.Log.Level = getEnv("LOG_LEVEL", cfg.Log.Level)
	cfg.Tracing.Endpoint = getEnv("JAEGER_ENDPOINT", cfg.Tracing.Endpoint)

	cfg.Supabase.URL = getEnv("SUPABASE_URL", cfg.Supabase.URL)
	cfg.Supabase.ServiceKey = getEnv("SUPABASE_SERVICE_KEY", cfg.Supabase.ServiceKey)
	cfg.Supabase.JWTSecret = getEnv("SUPABASE_JWT_SECRET", cfg.Supabase.JWTSecret)

	cfg.Store.Driver = getEnv("STORE_DRIVER", cfg.Store.Driver)
	cfg.Store.MySQLDSN = getEnv("MYSQL_DSN", cfg.Store.MySQLDSN)

	cfg.Redis.Addr = getEnv("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.ReviewGuard.Backend = getEnv("REVIEW_GUARD_BACKEND", cfg.ReviewGuard.Backend)
	cfg.Zookeeper.Servers = getEnvList("ZOOKEEPER_SERVERS", cfg.Zookeeper.Servers)

	cfg.Kafka.Brokers = getEnvList("KAFKA_BROKERS", cfg.Kafka.Brokers)
	cfg.Kafka.EventsTopic = getEnv("KAFKA_EVENTS_TOPIC", cfg.Kafka.EventsTopic)

	cfg.Nacos.ServerAddrs = getEnv("NACOS_SERVER_ADDRS", cfg.Nacos.ServerAddrs)
	cfg.Nacos.Namespace = getEnv("NACOS_NAMESPACE", cfg.Nacos.Namespace)
	cfg.Nacos.Group = getEnv("NACOS_GROUP", cfg.Nacos.Group)
	cfg.Nacos.DataID = getEnv("NACOS_DATA_ID", cfg.Nacos.DataID)
}

// getEnv 是一个内部辅助函数，从环境变量中读取配置。
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}
	parts := strings.Split(value, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
