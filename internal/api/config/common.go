package config

// Config 配置主体
type Config struct {
	Server                ServerConfig          `mapstructure:"server"`
	DB                    DBConfig              `mapstructure:"database"`
	Redis                 RedisConfig           `mapstructure:"redis"`
	Mongo                 MongoConfig           `mapstructure:"mongo"`
	MinIO                 MinIOConfig           `mapstructure:"minio"`
	Logstash              LogstashConfig        `mapstructure:"logstash"`
	Kafka                 KafkaConfig           `mapstructure:"kafka"`
	KafkaSnapshotConsumer KafkaSnapshotConsumer `mapstructure:"kafka_snapshot_consumer"`
	Stats                 StatsConfig           `mapstructure:"stats"`
	Pricing               PricingConfig         `mapstructure:"pricing"`
	Cron                  CronConfig            `mapstructure:"cron"`
}

// ServerConfig Server配置
type ServerConfig struct {
	Port   int   `mapstructure:"port"`
	NodeID int64 `mapstructure:"node_id"`
}

// DBConfig 数据库配置
type DBConfig struct {
	DSN         string `mapstructure:"dsn"`
	MaxIdle     int    `mapstructure:"max_idle"`
	MaxOpen     int    `mapstructure:"max_open"`
	MaxLifetime int    `mapstructure:"max_lifetime"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

// MongoConfig 审计库配置
type MongoConfig struct {
	URL      string `mapstructure:"url"`
	Database string `mapstructure:"database"`
}

// MinIOConfig MinIO配置
type MinIOConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	UseSSL    bool   `mapstructure:"use_ssl"`
}

// LogstashConfig 日志上报配置
type LogstashConfig struct {
	Address string `mapstructure:"address"`
	Index   string `mapstructure:"index"`
	Token   string `mapstructure:"token"`
}

type KafkaConfig struct {
	Brokers  []string       `mapstructure:"brokers"`
	Sasl     SaslConfig     `mapstructure:"sasl"`
	Consumer ConsumerConfig `mapstructure:"consumer"`
}

type SaslConfig struct {
	Enable   bool   `mapstructure:"enable"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

type ConsumerConfig struct {
	SessionTimeout    int `mapstructure:"session_timeout"`
	HeartbeatInterval int `mapstructure:"heartbeat_interval"`
	RebalanceTimeout  int `mapstructure:"rebalance_timeout"`
	MaxProcessingTime int `mapstructure:"max_processing_time"`
}

type KafkaSnapshotConsumer struct {
	Topic   string `mapstructure:"topic"`
	GroupID string `mapstructure:"group_id"`
}

// StatsConfig 平台播放量接口配置（快照轮询用）
type StatsConfig struct {
	BaseURL string `mapstructure:"base_url"`
	Token   string `mapstructure:"token"`
	Timeout int    `mapstructure:"timeout"`
}

// PricingConfig 结算配置
type PricingConfig struct {
	WindowDays       int              `mapstructure:"window_days"`
	PerformanceBased TierParamsConfig `mapstructure:"performance_based"`
	FixedRate        TierParamsConfig `mapstructure:"fixed_rate"`
}

// TierParamsConfig 合约档位参数
type TierParamsConfig struct {
	CPMRate            float64 `mapstructure:"cpm_rate"`
	UnitPostFee        float64 `mapstructure:"unit_post_fee"`
	CompositePostFee   float64 `mapstructure:"composite_post_fee"`
	CrossPostFee       float64 `mapstructure:"cross_post_fee"`
	MonthlyCap         float64 `mapstructure:"monthly_cap"`
	MinMonthlyPosts    int     `mapstructure:"min_monthly_posts"`
	EnforceMinPosts    bool    `mapstructure:"enforce_min_posts"`
	PairingWindow      string  `mapstructure:"pairing_window"`
	MonthlyFixedAmount float64 `mapstructure:"monthly_fixed_amount"`
}

// CronConfig 定时任务表达式
type CronConfig struct {
	RecomputeSpec    string `mapstructure:"recompute_spec"`
	MonthlyCloseSpec string `mapstructure:"monthly_close_spec"`
	SnapshotPollSpec string `mapstructure:"snapshot_poll_spec"`
}
