package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// AppConfig 应用基础信息
type AppConfig struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
}

// HTTPConfig HTTP 服务配置
type HTTPConfig struct {
	Addr         string        `mapstructure:"addr"`
	ReadTimeout  time.Duration `mapstructure:"readTimeout"`
	WriteTimeout time.Duration `mapstructure:"writeTimeout"`
	API          APIConfig     `mapstructure:"api"`
}

// APIConfig /api 路由组的认证与限流
type APIConfig struct {
	AuthEnabled    bool     `mapstructure:"authEnabled"`
	APIKeys        []string `mapstructure:"apiKeys"`
	RequestsPerMin int      `mapstructure:"requestsPerMin"`
	Burst          int      `mapstructure:"burst"`
}

// TCPConfig TCP 接入配置（ESP 桥接器通过 TCP 转发总线字节）
type TCPConfig struct {
	Enable         bool          `mapstructure:"enable"`
	Addr           string        `mapstructure:"addr"`
	ReadTimeout    time.Duration `mapstructure:"readTimeout"`
	MaxConnections int           `mapstructure:"maxConnections"`
	// AcceptRate 每秒允许接入的新连接数，AcceptBurst 为突发容量
	AcceptRate  float64 `mapstructure:"acceptRate"`
	AcceptBurst int     `mapstructure:"acceptBurst"`
}

// SerialConfig 串口接入配置
type SerialConfig struct {
	Enable      bool          `mapstructure:"enable"`
	Port        string        `mapstructure:"port"`
	BaudRate    int           `mapstructure:"baudRate"`
	DataBits    int           `mapstructure:"dataBits"`
	Parity      string        `mapstructure:"parity"`
	StopBits    int           `mapstructure:"stopBits"`
	ReadTimeout time.Duration `mapstructure:"readTimeout"`
	// ReopenDelay 端口断开后重新打开前的等待时间
	ReopenDelay time.Duration `mapstructure:"reopenDelay"`
}

// LumberjackConfig 日志滚动（lumberjack）配置
type LumberjackConfig struct {
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"maxSize"`
	MaxBackups int    `mapstructure:"maxBackups"`
	MaxAgeDays int    `mapstructure:"maxAge"`
	Compress   bool   `mapstructure:"compress"`
}

// LoggingConfig 日志级别与输出配置
type LoggingConfig struct {
	Level  string           `mapstructure:"level"`
	Format string           `mapstructure:"format"`
	File   LumberjackConfig `mapstructure:"file"`
}

// MetricsConfig Prometheus 指标暴露配置
type MetricsConfig struct {
	Enable bool   `mapstructure:"enable"`
	Path   string `mapstructure:"path"`
}

// ESPConfig 协议层参数
type ESPConfig struct {
	// MaxFrameLength 单帧上限，超过即丢弃并重新同步
	MaxFrameLength int `mapstructure:"maxFrameLength"`
	// RejectLogRate 每秒最多记录多少条畸形帧告警
	RejectLogRate  float64 `mapstructure:"rejectLogRate"`
	RejectLogBurst int     `mapstructure:"rejectLogBurst"`
	// StaleAfter 设备超过该时长未出现即视为离线
	StaleAfter time.Duration `mapstructure:"staleAfter"`
}

// Config 顶层配置结构
type Config struct {
	App     AppConfig     `mapstructure:"app"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	TCP     TCPConfig     `mapstructure:"tcp"`
	Serial  SerialConfig  `mapstructure:"serial"`
	Logging LoggingConfig `mapstructure:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	ESP     ESPConfig     `mapstructure:"esp"`
}

// Load 从 YAML/TOML/JSON 文件与环境变量加载配置。
// 若 path 为空，则尝试从环境变量 ESPGW_CONFIG 读取；否则回退到 configs/example.yaml。
func Load(path string) (*Config, error) {
	v := viper.New()

	// 环境变量覆盖：前缀 ESPGW_，并将点号替换为下划线
	v.SetEnvPrefix("ESPGW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path == "" {
		path = v.GetString("config")
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.SetConfigName("example")
		v.SetConfigType("yaml")
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// 首次运行允许缺少配置文件，依赖默认值与环境变量
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate 检查相互约束的配置项
func (c *Config) Validate() error {
	if c.TCP.Enable && c.TCP.Addr == "" {
		return errors.New("config: tcp.addr is required when tcp.enable is set")
	}
	if c.Serial.Enable && c.Serial.Port == "" {
		return errors.New("config: serial.port is required when serial.enable is set")
	}
	if c.HTTP.API.AuthEnabled && len(c.HTTP.API.APIKeys) == 0 {
		return errors.New("config: http.api.apiKeys is required when authEnabled is set")
	}
	if c.ESP.MaxFrameLength < 0 {
		return fmt.Errorf("config: esp.maxFrameLength %d must not be negative", c.ESP.MaxFrameLength)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "esp-gateway")
	v.SetDefault("app.env", "dev")

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.readTimeout", "5s")
	v.SetDefault("http.writeTimeout", "10s")
	v.SetDefault("http.api.authEnabled", false)
	v.SetDefault("http.api.requestsPerMin", 600)
	v.SetDefault("http.api.burst", 60)

	v.SetDefault("tcp.enable", true)
	v.SetDefault("tcp.addr", ":7000")
	v.SetDefault("tcp.readTimeout", "60s")
	v.SetDefault("tcp.maxConnections", 64)
	v.SetDefault("tcp.acceptRate", 10)
	v.SetDefault("tcp.acceptBurst", 20)

	v.SetDefault("serial.enable", false)
	v.SetDefault("serial.baudRate", 19200)
	v.SetDefault("serial.dataBits", 8)
	v.SetDefault("serial.parity", "none")
	v.SetDefault("serial.stopBits", 1)
	v.SetDefault("serial.readTimeout", "500ms")
	v.SetDefault("serial.reopenDelay", "2s")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.file.filename", "logs/esp-gateway.log")
	v.SetDefault("logging.file.maxSize", 100)
	v.SetDefault("logging.file.maxBackups", 7)
	v.SetDefault("logging.file.maxAge", 30)
	v.SetDefault("logging.file.compress", true)

	v.SetDefault("metrics.enable", true)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("esp.maxFrameLength", 261)
	v.SetDefault("esp.rejectLogRate", 1)
	v.SetDefault("esp.rejectLogBurst", 5)
	v.SetDefault("esp.staleAfter", "30s")
}
