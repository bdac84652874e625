package config

import (
	"fmt"
	"log"
	"os/exec"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	viper "github.com/spf13/viper"
)

/*
config 單例
init : 設置 viper watch 與 onConfigChange，.env 改了不用重啟
read : 一般讀取走讀寫鎖
*/
var configSingleton *ConfigSingleTon
var muonce sync.Once

type ConfigSingleTon struct {
	Config *Config
	mu     sync.RWMutex
}

type Config struct {
	ModulerName     string `mapstructure:"MODULER_NAME"`
	ServerPort      string `mapstructure:"SERVER_PORT"`
	DbName          string `mapstructure:"POSTGRES_DB"`
	DbHost          string `mapstructure:"POSTGRES_HOST"`
	DbPort          string `mapstructure:"POSTGRES_PORT"`
	DbUser          string `mapstructure:"POSTGRES_USER"`
	DbPas           string `mapstructure:"POSTGRES_PASSWORD"`
	RedisAddr       string `mapstructure:"REDIS_ADDR"`
	RedisPas        string `mapstructure:"REDIS_PASSWORD"`
	RedisDB         int    `mapstructure:"REDIS_DB"`
	KafkaBrokers    string `mapstructure:"KAFKA_BROKERS"` // 逗號分隔
	NotifyTopic     string `mapstructure:"NOTIFY_TOPIC"`
	EventDBUrl      string `mapstructure:"EVENT_DB_URL"`
	CommercialEmail string `mapstructure:"COMMERCIAL_EMAIL"` // 新單/申裝通知收件信箱
	DealLimit       int    `mapstructure:"DEAL_LIMIT"`       // 首頁好康商品數量
	SenderName      string `mapstructure:"SENDER_NAME"`
	EmailAccount    string `mapstructure:"EMAIL_ACCOUNT"`
	SmtpAuthKey     string `mapstructure:"SMTP_AUTH_KEY"`
}

// KafkaBrokerList 拆 KAFKA_BROKERS 成 slice
func (c *Config) KafkaBrokerList() []string {
	if c.KafkaBrokers == "" {
		return nil
	}
	parts := strings.Split(c.KafkaBrokers, ",")
	brokers := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			brokers = append(brokers, s)
		}
	}
	return brokers
}

func GetConfig() *Config {
	initConfig()
	configSingleton.mu.RLock()
	defer configSingleton.mu.RUnlock()
	return configSingleton.Config
}

func initConfig() {
	if configSingleton == nil {
		muonce.Do(func() {
			configSingleton = &ConfigSingleTon{}
			if cf, err := loadConfig(); err == nil {
				configSingleton.Config = cf
			} else {
				log.Fatal("error read config")
			}
			viper.WatchConfig()
			viper.OnConfigChange(func(e fsnotify.Event) {
				if cf, err := loadConfig(); err == nil {
					configSingleton.Config = cf
				} else {
					log.Panic("failed to reload config file")
				}
			})
		})
	}
}

/*
單純回傳錯誤  由外部決定要不要Fatal, 畢竟有可能有替代方案
*/
func loadConfig() (cf *Config, err error) {
	configSingleton.mu.Lock()
	defer configSingleton.mu.Unlock()

	cf = &Config{}
	viper.SetConfigFile(fmt.Sprintf("%s/.env", getProjectRoot("github.com/RoyceAzure/lab/telecom_shop")))
	viper.AutomaticEnv()

	err = viper.ReadInConfig()
	if err != nil {
		return
	}

	err = viper.Unmarshal(cf)
	if err != nil {
		return
	}
	return
}

func getProjectRoot(moduleName string) string {
	cmd := exec.Command("go", "list", "-m", "-f", "{{.Dir}}", moduleName)
	output, err := cmd.Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(output))
}
