package core

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	envPrefix      = "EDUMASTER"
	defaultBaseURL = "https://edu-master-delta.vercel.app"
)

type Config struct {
	Env          string
	Build        string
	AppName      string
	Debug        bool
	TestMode     bool
	RollbarToken string

	API struct {
		BaseURL string
		Timeout time.Duration
	}

	Storage struct {
		Driver        string // sqlite | redis | memory
		Path          string
		RedisAddr     string
		RedisPassword string
		RedisDB       int
		KeyPrefix     string
	}

	Exam struct {
		TickInterval    time.Duration
		WarningWindow   time.Duration
		WarningDuration time.Duration
	}

	DevAPI struct {
		Address            string
		SecretKey          string
		JWTExpirationDelta time.Duration
		SuperAdminEmail    string
		SuperAdminPassword string
		ShutdownTimeout    time.Duration
	}
}

// NewConfig reads the configuration from the defaults, the optional `config/.env.<env>` file
// and the EDUMASTER_* environment variables (in increasing order of precedence).
func NewConfig() (*Config, error) {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("testMode", false)
	v.SetDefault("appName", "EduMaster")
	v.SetDefault("build", "dev")
	v.SetDefault("rollbarToken", "")

	v.SetDefault("api.baseUrl", defaultBaseURL)
	v.SetDefault("api.timeout", 30*time.Second)

	v.SetDefault("storage.driver", "sqlite")
	v.SetDefault("storage.path", defaultStoragePath())
	v.SetDefault("storage.redisAddr", "localhost:6379")
	v.SetDefault("storage.redisPassword", "")
	v.SetDefault("storage.redisDB", 0)
	v.SetDefault("storage.keyPrefix", "edumaster:")

	v.SetDefault("exam.tickInterval", time.Second)
	v.SetDefault("exam.warningWindow", 5*time.Minute)
	v.SetDefault("exam.warningDuration", 3*time.Second)

	v.SetDefault("devapi.address", ":4000")
	v.SetDefault("devapi.secretKey", "xq2-6ejz&n1h@v0k!tyw^s3ab#r9c7)m8p4(fdeu5gl")
	v.SetDefault("devapi.jwtExpirationDelta", 7*24*time.Hour)
	v.SetDefault("devapi.superAdminEmail", "s_admin@gmail.com")
	v.SetDefault("devapi.superAdminPassword", "Sup3r@dmin!")
	v.SetDefault("devapi.shutdownTimeout", 5*time.Second)

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	}

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(os.Getenv(envPrefix+"_CONFIG_DIR"), "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			return nil, errors.Wrapf(err, "loading %s", dotEnvPath)
		}
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "stat %s", dotEnvPath)
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	conf := &Config{
		Env:          env,
		Build:        v.GetString("build"),
		AppName:      v.GetString("appName"),
		Debug:        v.GetBool("debug"),
		TestMode:     v.GetBool("testMode"),
		RollbarToken: v.GetString("rollbarToken"),
	}

	conf.API.BaseURL = strings.TrimRight(v.GetString("api.baseUrl"), "/")
	conf.API.Timeout = v.GetDuration("api.timeout")

	conf.Storage.Driver = strings.ToLower(v.GetString("storage.driver"))
	conf.Storage.Path = v.GetString("storage.path")
	conf.Storage.RedisAddr = v.GetString("storage.redisAddr")
	conf.Storage.RedisPassword = v.GetString("storage.redisPassword")
	conf.Storage.RedisDB = v.GetInt("storage.redisDB")
	conf.Storage.KeyPrefix = v.GetString("storage.keyPrefix")

	conf.Exam.TickInterval = v.GetDuration("exam.tickInterval")
	conf.Exam.WarningWindow = v.GetDuration("exam.warningWindow")
	conf.Exam.WarningDuration = v.GetDuration("exam.warningDuration")

	conf.DevAPI.Address = v.GetString("devapi.address")
	conf.DevAPI.SecretKey = v.GetString("devapi.secretKey")
	conf.DevAPI.JWTExpirationDelta = v.GetDuration("devapi.jwtExpirationDelta")
	conf.DevAPI.SuperAdminEmail = CleanString(v.GetString("devapi.superAdminEmail"), true /* lower */)
	conf.DevAPI.SuperAdminPassword = v.GetString("devapi.superAdminPassword")
	conf.DevAPI.ShutdownTimeout = v.GetDuration("devapi.shutdownTimeout")

	if conf.API.BaseURL == "" {
		return nil, NewArgumentError("api.baseUrl must not be empty")
	}
	if conf.Exam.TickInterval <= 0 {
		return nil, NewArgumentError("exam.tickInterval must be positive")
	}
	return conf, nil
}

func defaultStoragePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "edumaster", "storage.db")
}
