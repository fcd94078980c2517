package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App     AppConfig     `mapstructure:"app"`
	Server  ServerConfig  `mapstructure:"server"`
	Log     LogConfig     `mapstructure:"log"`
	DB      DBConfig      `mapstructure:"db"`
	Rate    RateConfig    `mapstructure:"rate"`
	Monitor MonitorConfig `mapstructure:"monitor"`
	OCR     OCRConfig     `mapstructure:"ocr"`
	Cron    CronConfig    `mapstructure:"cron"`
}

type AppConfig struct {
	Env string `mapstructure:"env"`
}

type ServerConfig struct {
	HTTPAddr string `mapstructure:"http_addr"`
}

type LogConfig struct {
	Level             string `mapstructure:"level"`
	Encoding          string `mapstructure:"encoding"`
	Development       bool   `mapstructure:"development"`
	Sampling          bool   `mapstructure:"sampling"`
	DisableCaller     bool   `mapstructure:"disable_caller"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`
}

type DBConfig struct {
	Path            string        `mapstructure:"path"`
	LogMode         bool          `mapstructure:"log_mode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

type RateConfig struct {
	Endpoint  string        `mapstructure:"endpoint"`
	XPath     string        `mapstructure:"xpath"`
	UserAgent string        `mapstructure:"user_agent"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

type MonitorConfig struct {
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

type OCRConfig struct {
	Python  string `mapstructure:"python"`
	Script  string `mapstructure:"script"`
	TempDir string `mapstructure:"temp_dir"`
}

type CronConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	TempSweep  string        `mapstructure:"temp_sweep"`
	TempMaxAge time.Duration `mapstructure:"temp_max_age"`
}

func Load(path string, envOnly bool) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("ED")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.AutomaticEnv()
	v.SetDefault("app.env", "dev")
	v.SetDefault("server.http_addr", ":3001")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")
	v.SetDefault("log.development", true)
	v.SetDefault("log.sampling", false)
	v.SetDefault("log.disable_caller", false)
	v.SetDefault("log.disable_stacktrace", false)
	v.SetDefault("db.path", "data/exchange-diary.db")
	v.SetDefault("db.log_mode", false)
	v.SetDefault("db.max_open_conns", 1)
	v.SetDefault("db.max_idle_conns", 1)
	v.SetDefault("db.conn_max_lifetime", "1h")
	v.SetDefault("rate.endpoint", "https://m.stock.naver.com/marketindex/exchange/FX_USDKRW")
	v.SetDefault("rate.xpath", "/html/body/div[1]/div[1]/div[2]/div/div[1]/div[2]/div[2]/strong/text()")
	v.SetDefault("rate.user_agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36")
	v.SetDefault("rate.timeout", "5s")
	v.SetDefault("monitor.poll_interval", "60s")
	v.SetDefault("ocr.python", "python3")
	v.SetDefault("ocr.script", "easyocr_ocr.py")
	v.SetDefault("ocr.temp_dir", "temp")
	v.SetDefault("cron.enabled", true)
	v.SetDefault("cron.temp_sweep", "@every 10m")
	v.SetDefault("cron.temp_max_age", "1h")

	if !envOnly {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
