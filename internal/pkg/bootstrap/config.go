// internal/pkg/bootstrap/config.go
package bootstrap

import (
	"os"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration 包装 time.Duration，使 YAML 中既可以写 "5s" 这样的字符串，
// 也兼容裸的纳秒整数。
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err == nil {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return err
		}
		*d = Duration(parsed)
		return nil
	}
	var ns int64
	if err := value.Decode(&ns); err != nil {
		return err
	}
	*d = Duration(ns)
	return nil
}

// Config 聚合了所有服务共享的配置。
// 通过 CONFIG_PATH 指定的 YAML 文件加载，个别关键项允许用环境变量覆盖，
// 便于在容器环境中注入。
type Config struct {
	App struct {
		// InventoryAPIKey 是库存服务所有端点要求的访问凭证（X-API-Key）。
		InventoryAPIKey string `yaml:"inventory_api_key"`
		// InventoryBaseURL 是订单服务调用库存服务的基地址。
		InventoryBaseURL string `yaml:"inventory_base_url"`
		// ReservationLocation 是下单预占库存时使用的默认库位。
		// 多库位寻源不在当前范围内，但该策略保持可配置。
		ReservationLocation string `yaml:"reservation_location"`
		// ReserveTimeout 是一次跨服务预占调用的超时上限。
		ReserveTimeout Duration `yaml:"reserve_timeout"`
	} `yaml:"app"`

	Infra struct {
		Mysql struct {
			DSN string `yaml:"dsn"`
		} `yaml:"mysql"`
		Redis struct {
			Addr string `yaml:"addr"`
			// CacheTTL 是读缓存条目的过期时间。
			CacheTTL Duration `yaml:"cache_ttl"`
		} `yaml:"redis"`
		Jaeger struct {
			Endpoint string `yaml:"endpoint"`
		} `yaml:"jaeger"`
	} `yaml:"infra"`
}

var (
	currentConfig Config
	configOnce    sync.Once
)

// Init 加载配置。所有服务的 main 在启动时首先调用它。
func Init() {
	configOnce.Do(func() {
		currentConfig = defaultConfig()

		if path := os.Getenv("CONFIG_PATH"); path != "" {
			data, err := os.ReadFile(path)
			if err != nil {
				panic("bootstrap: cannot read config file " + path + ": " + err.Error())
			}
			if err := yaml.Unmarshal(data, &currentConfig); err != nil {
				panic("bootstrap: cannot parse config file " + path + ": " + err.Error())
			}
		}

		// 环境变量覆盖，优先级最高
		if v := os.Getenv("INVENTORY_API_KEY"); v != "" {
			currentConfig.App.InventoryAPIKey = v
		}
		if v := os.Getenv("INVENTORY_BASE_URL"); v != "" {
			currentConfig.App.InventoryBaseURL = v
		}
		if v := os.Getenv("RESERVATION_LOCATION"); v != "" {
			currentConfig.App.ReservationLocation = v
		}
		if v := os.Getenv("MYSQL_DSN"); v != "" {
			currentConfig.Infra.Mysql.DSN = v
		}
		if v := os.Getenv("REDIS_ADDR"); v != "" {
			currentConfig.Infra.Redis.Addr = v
		}
		if v := os.Getenv("JAEGER_ENDPOINT"); v != "" {
			currentConfig.Infra.Jaeger.Endpoint = v
		}
	})
}

// GetCurrentConfig 返回当前生效的配置。必须在 Init 之后调用。
func GetCurrentConfig() Config {
	return currentConfig
}

func defaultConfig() Config {
	var c Config
	c.App.InventoryAPIKey = "testkey"
	c.App.InventoryBaseURL = "http://localhost:8082"
	c.App.ReservationLocation = "default"
	c.App.ReserveTimeout = Duration(5 * time.Second)
	c.Infra.Mysql.DSN = "root:root@tcp(localhost:3306)/stockyard?charset=utf8mb4&parseTime=True&loc=Local"
	c.Infra.Redis.Addr = ""
	c.Infra.Redis.CacheTTL = Duration(30 * time.Second)
	c.Infra.Jaeger.Endpoint = "http://localhost:14268/api/traces"
	return c
}
