package config

import (
	"errors"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	Server      struct {
		Port            string `env:"PORT" envDefault:"3000"`
		ReadTimeout     int    `env:"READ_TIMEOUT" envDefault:"10"`
		WriteTimeout    int    `env:"WRITE_TIMEOUT" envDefault:"60"` // 排课是同步接口，需要比普通接口更长的写超时
		IdleTimeout     int    `env:"IDLE_TIMEOUT" envDefault:"60"`
		ShutdownTimeout int    `env:"SHUTDOWN_TIMEOUT" envDefault:"10"`
	} `envPrefix:"SERVER_"`
	Database struct {
		DSN                string `env:"DSN,required"`
		ConnectTimeout     int    `env:"CONNECT_TIMEOUT" envDefault:"10"`
		QueryTimeout       int    `env:"QUERY_TIMEOUT" envDefault:"10"`
		TransactionTimeout int    `env:"TRANSACTION_TIMEOUT" envDefault:"20"`
		MaxOpenConns       int    `env:"MAX_OPEN_CONNS" envDefault:"10"`
		MaxIdleConns       int    `env:"MAX_IDLE_CONNS" envDefault:"10"`
		MaxIdleTime        int    `env:"MAX_IDLE_TIME" envDefault:"60"`
	} `envPrefix:"DATABASE_"`
	InitialAdmin struct {
		Username string `env:"USERNAME" envDefault:"admin"`
		Password string `env:"PASSWORD,required"`
		FullName string `env:"FULL_NAME" envDefault:"管理员"`
		Email    string `env:"EMAIL,required"`
	} `envPrefix:"INITIAL_ADMIN_"`
	JWT struct {
		Expiration int    `env:"EXPIRATION" envDefault:"1209600"` // 14 天
		Secret     string `env:"SECRET,required"`
	} `envPrefix:"JWT_"`
	Seed struct {
		User struct {
			Password string `env:"PASSWORD,required"`
		} `envPrefix:"USER_"`
	} `envPrefix:"SEED_"`
	Email struct {
		UserDomain string `env:"USER_DOMAIN,required"`
		SMTP       struct {
			Username    string `env:"USERNAME,required"`
			Password    string `env:"PASSWORD,required"`
			Host        string `env:"HOST,required"`
			Port        int    `env:"PORT" envDefault:"465"`
			DialTimeout int    `env:"DIAL_TIMEOUT" envDefault:"10"`
		} `envPrefix:"SMTP_"`
	} `envPrefix:"EMAIL_"`
	RabbitMQ struct {
		DSN            string `env:"DSN,required"`
		PublishTimeout int    `env:"PUBLISH_TIMEOUT" envDefault:"10"`
	} `envPrefix:"RABBITMQ_"`
	Redis struct {
		Host                string `env:"HOST" envDefault:"localhost"`
		Port                int    `env:"PORT" envDefault:"6379"`
		Password            string `env:"PASSWORD,required"`
		ConnectTimeout      int    `env:"CONNECT_TIMEOUT" envDefault:"10"`
		TimetableExpiration int    `env:"TIMETABLE_EXPIRATION" envDefault:"3600"` // 课表缓存有效期（秒）
		GenerateLockTimeout int    `env:"GENERATE_LOCK_TIMEOUT" envDefault:"120"` // 排课互斥锁有效期（秒）
	} `envPrefix:"REDIS_"`
	Institution struct {
		OperatingStart string `env:"OPERATING_START" envDefault:"08:00:00"`
		OperatingEnd   string `env:"OPERATING_END" envDefault:"18:00:00"`
		RecessStart    string `env:"RECESS_START" envDefault:"12:00:00"`
		RecessEnd      string `env:"RECESS_END" envDefault:"13:00:00"`
	} `envPrefix:"INSTITUTION_"`
	Engine struct {
		PopulationSize      int32   `env:"POPULATION_SIZE" envDefault:"10"`
		MaxGenerations      int32   `env:"MAX_GENERATIONS" envDefault:"15"`
		CrossoverRate       float64 `env:"CROSSOVER_RATE" envDefault:"0.8"`
		MutationRate        float64 `env:"MUTATION_RATE" envDefault:"0.2"`
		EliteCount          int32   `env:"ELITE_COUNT" envDefault:"2"`
		HardWeight          float64 `env:"HARD_WEIGHT" envDefault:"1000"`
		PreferenceWeight    float64 `env:"PREFERENCE_WEIGHT" envDefault:"5"`
		WorkloadWeight      float64 `env:"WORKLOAD_WEIGHT" envDefault:"1"`
		ProficiencyWeight   float64 `env:"PROFICIENCY_WEIGHT" envDefault:"1"`
		CrossYearWeight     float64 `env:"CROSS_YEAR_WEIGHT" envDefault:"1"`
		VarianceThreshold   float64 `env:"VARIANCE_THRESHOLD" envDefault:"4"`
		MinProficiencyScore int32   `env:"MIN_PROFICIENCY_SCORE" envDefault:"10"`
		AcceptanceThreshold int32   `env:"ACCEPTANCE_THRESHOLD" envDefault:"0"`
	} `envPrefix:"ENGINE_"`
	NewUser struct {
		PasswordLength int `env:"PASSWORD_LENGTH" envDefault:"12"`
	} `envPrefix:"NEW_USER_"`
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		aggErr := env.AggregateError{}
		if ok := errors.As(err, &aggErr); ok {
			// 只返回第一个错误使得日志更清晰
			return nil, aggErr.Errors[0]
		}
	}

	return cfg, nil
}
