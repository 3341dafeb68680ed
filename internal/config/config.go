package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/veltra/mixfeed/pkg/models"
)

type Config struct {
	Server     Server     `mapstructure:"server"`
	Database   Database   `mapstructure:"database"`
	Redis      Redis      `mapstructure:"redis"`
	Neo4j      Neo4j      `mapstructure:"neo4j"`
	Kafka      Kafka      `mapstructure:"kafka"`
	Logging    Logging    `mapstructure:"logging"`
	Engine     Engine     `mapstructure:"engine"`
	Search     Search     `mapstructure:"search"`
	Monitoring Monitoring `mapstructure:"monitoring"`
	Security   Security   `mapstructure:"security"`
}

type Server struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type Database struct {
	URL            string        `mapstructure:"url"`
	MaxConnections int           `mapstructure:"max_connections"`
	MaxIdleTime    time.Duration `mapstructure:"max_idle_time"`
	MaxLifetime    time.Duration `mapstructure:"max_lifetime"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

type Redis struct {
	URL        string        `mapstructure:"url"`
	MaxRetries int           `mapstructure:"max_retries"`
	PoolSize   int           `mapstructure:"pool_size"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

type Neo4j struct {
	URL      string `mapstructure:"url"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

type Kafka struct {
	Brokers []string `mapstructure:"brokers"`
	Topics  struct {
		UserInteractions string `mapstructure:"user_interactions"`
	} `mapstructure:"topics"`
	ConsumerGroup string `mapstructure:"consumer_group"`
}

type Logging struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Engine groups every tunable of the ranking engine: the weight table, the
// cache TTLs, the cold-start and activity thresholds, the provider windows
// and the pagination defaults. It is passed to the engine constructor
// instead of living in package-level state so tests can build their own.
type Engine struct {
	Activity      Activity      `mapstructure:"activity"`
	ColdStart     ColdStart     `mapstructure:"cold_start"`
	Providers     Providers     `mapstructure:"providers"`
	Caching       Caching       `mapstructure:"caching"`
	Pagination    Pagination    `mapstructure:"pagination"`
	Social        Social        `mapstructure:"social"`
	FanoutTimeout time.Duration `mapstructure:"fanout_timeout"`

	// ColdStartWeights is the forced vector under cold start; WeightTable
	// maps activity levels to vectors, with DefaultWeights used for levels
	// not present in the table (low, inactive).
	ColdStartWeights models.WeightVector                          `mapstructure:"-"`
	WeightTable      map[models.ActivityLevel]models.WeightVector `mapstructure:"-"`
	DefaultWeights   models.WeightVector                          `mapstructure:"-"`
}

type Activity struct {
	VeryActiveScore float64 `mapstructure:"very_active_score"`
	ActiveScore     float64 `mapstructure:"active_score"`
	ModerateScore   float64 `mapstructure:"moderate_score"`
	LowScore        float64 `mapstructure:"low_score"`
}

type ColdStart struct {
	MinInteractions int `mapstructure:"min_interactions"`
}

type Providers struct {
	HotWindow            time.Duration `mapstructure:"hot_window"`
	HotWideWindow        time.Duration `mapstructure:"hot_wide_window"`
	LatestWindow         time.Duration `mapstructure:"latest_window"`
	LatestWideWindow     time.Duration `mapstructure:"latest_wide_window"`
	UpdatedWindow        time.Duration `mapstructure:"updated_window"`
	UpdatedWideWindow    time.Duration `mapstructure:"updated_wide_window"`
	ContentMinSimilarity float64       `mapstructure:"content_min_similarity"`
	CFMinSimilarity      float64       `mapstructure:"cf_min_similarity"`
	SocialMinSimilarity  float64       `mapstructure:"social_min_similarity"`
	ExcludeInteracted    bool          `mapstructure:"exclude_interacted"`
}

type Caching struct {
	ActivityTTL  time.Duration `mapstructure:"activity_ttl"`
	ColdStartTTL time.Duration `mapstructure:"cold_start_ttl"`
	ProviderTTL  time.Duration `mapstructure:"provider_ttl"`
	FeedTTL      time.Duration `mapstructure:"feed_ttl"`
}

type Pagination struct {
	DefaultLimit   int `mapstructure:"default_limit"`
	MaxLimit       int `mapstructure:"max_limit"`
	OverfetchExtra int `mapstructure:"overfetch_extra"`
}

type Social struct {
	MaxDistance int `mapstructure:"max_distance"`
}

type Search struct {
	DefaultLimit  int `mapstructure:"default_limit"`
	MaxLimit      int `mapstructure:"max_limit"`
	MaxCorpusSize int `mapstructure:"max_corpus_size"`
}

type Monitoring struct {
	Enabled     bool   `mapstructure:"enabled"`
	MetricsPath string `mapstructure:"metrics_path"`
}

type Security struct {
	CORS CORS `mapstructure:"cors"`
}

type CORS struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
}

func Load() (*Config, error) {
	viper.SetConfigName("app")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")

	setDefaults()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		// Config file is optional, continue with env vars and defaults
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	config.Engine.ColdStartWeights = DefaultColdStartWeights()
	config.Engine.WeightTable = DefaultWeightTable()
	config.Engine.DefaultWeights = DefaultWeights()

	if err := config.Engine.Validate(); err != nil {
		return nil, fmt.Errorf("invalid engine config: %w", err)
	}

	return &config, nil
}

// DefaultColdStartWeights forces the hot/latest-heavy fallback: every
// personalized weight is exactly zero.
func DefaultColdStartWeights() models.WeightVector {
	return models.WeightVector{
		models.AlgorithmHot:           0.80,
		models.AlgorithmLatest:        0.15,
		models.AlgorithmUpdated:       0.05,
		models.AlgorithmContentBased:  0,
		models.AlgorithmCollaborative: 0,
		models.AlgorithmSocialCF:      0,
	}
}

// DefaultWeightTable maps activity levels to hand-tuned weight vectors.
// Personalized weight rises with activity; each row sums to 1.0.
func DefaultWeightTable() map[models.ActivityLevel]models.WeightVector {
	return map[models.ActivityLevel]models.WeightVector{
		models.ActivityVeryActive: {
			models.AlgorithmHot:           0.10,
			models.AlgorithmLatest:        0.10,
			models.AlgorithmUpdated:       0.07,
			models.AlgorithmContentBased:  0.28,
			models.AlgorithmCollaborative: 0.25,
			models.AlgorithmSocialCF:      0.20,
		},
		models.ActivityActive: {
			models.AlgorithmHot:           0.15,
			models.AlgorithmLatest:        0.12,
			models.AlgorithmUpdated:       0.08,
			models.AlgorithmContentBased:  0.25,
			models.AlgorithmCollaborative: 0.22,
			models.AlgorithmSocialCF:      0.18,
		},
		models.ActivityModerate: {
			models.AlgorithmHot:           0.25,
			models.AlgorithmLatest:        0.15,
			models.AlgorithmUpdated:       0.10,
			models.AlgorithmContentBased:  0.20,
			models.AlgorithmCollaborative: 0.18,
			models.AlgorithmSocialCF:      0.12,
		},
	}
}

// DefaultWeights is the row used for low/inactive (non cold-start) users.
func DefaultWeights() models.WeightVector {
	return models.WeightVector{
		models.AlgorithmHot:           0.35,
		models.AlgorithmLatest:        0.20,
		models.AlgorithmUpdated:       0.10,
		models.AlgorithmContentBased:  0.15,
		models.AlgorithmCollaborative: 0.12,
		models.AlgorithmSocialCF:      0.08,
	}
}

// Validate checks the weight table for completeness: every vector must have
// an entry for every provider, no weight may be negative, and the
// cold-start vector must zero out all personalized providers.
func (e *Engine) Validate() error {
	check := func(name string, w models.WeightVector) error {
		for _, alg := range models.AllAlgorithms {
			v, ok := w[alg]
			if !ok {
				return fmt.Errorf("%s: missing weight for %q", name, alg)
			}
			if v < 0 {
				return fmt.Errorf("%s: negative weight %f for %q", name, v, alg)
			}
		}
		return nil
	}

	if err := check("cold_start", e.ColdStartWeights); err != nil {
		return err
	}
	for _, alg := range models.AllAlgorithms {
		if alg.Personalized() && e.ColdStartWeights[alg] != 0 {
			return fmt.Errorf("cold_start: personalized weight for %q must be zero", alg)
		}
	}
	if err := check("default", e.DefaultWeights); err != nil {
		return err
	}
	for level, w := range e.WeightTable {
		if err := check(string(level), w); err != nil {
			return err
		}
	}
	return nil
}

// WeightsFor selects the table row for a level, falling back to the default
// row for levels without a dedicated entry.
func (e *Engine) WeightsFor(level models.ActivityLevel) models.WeightVector {
	if w, ok := e.WeightTable[level]; ok {
		return w
	}
	return e.DefaultWeights
}

func setDefaults() {
	// Server defaults
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.mode", "development")

	// Database defaults
	viper.SetDefault("database.max_connections", 25)
	viper.SetDefault("database.max_idle_time", "15m")
	viper.SetDefault("database.max_lifetime", "1h")
	viper.SetDefault("database.connect_timeout", "10s")

	// Redis defaults
	viper.SetDefault("redis.url", "localhost:6379")
	viper.SetDefault("redis.max_retries", 3)
	viper.SetDefault("redis.pool_size", 10)
	viper.SetDefault("redis.timeout", "5s")

	// Kafka defaults
	viper.SetDefault("kafka.brokers", []string{"localhost:9092"})
	viper.SetDefault("kafka.topics.user_interactions", "user-interactions")
	viper.SetDefault("kafka.consumer_group", "mixfeed-invalidators")

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "text")

	// Engine defaults
	viper.SetDefault("engine.activity.very_active_score", 50.0)
	viper.SetDefault("engine.activity.active_score", 30.0)
	viper.SetDefault("engine.activity.moderate_score", 15.0)
	viper.SetDefault("engine.activity.low_score", 5.0)
	viper.SetDefault("engine.cold_start.min_interactions", 5)
	viper.SetDefault("engine.providers.hot_window", "168h")      // 7 days
	viper.SetDefault("engine.providers.hot_wide_window", "720h") // 30 days
	viper.SetDefault("engine.providers.latest_window", "168h")
	viper.SetDefault("engine.providers.latest_wide_window", "720h")
	viper.SetDefault("engine.providers.updated_window", "720h")       // 30 days
	viper.SetDefault("engine.providers.updated_wide_window", "2160h") // 90 days
	viper.SetDefault("engine.providers.content_min_similarity", 0.1)
	viper.SetDefault("engine.providers.cf_min_similarity", 0.3)
	viper.SetDefault("engine.providers.social_min_similarity", 0.2)
	viper.SetDefault("engine.providers.exclude_interacted", true)
	viper.SetDefault("engine.caching.activity_ttl", "30m")
	viper.SetDefault("engine.caching.cold_start_ttl", "1h")
	viper.SetDefault("engine.caching.provider_ttl", "15m")
	viper.SetDefault("engine.caching.feed_ttl", "10m")
	viper.SetDefault("engine.pagination.default_limit", 20)
	viper.SetDefault("engine.pagination.max_limit", 100)
	viper.SetDefault("engine.pagination.overfetch_extra", 20)
	viper.SetDefault("engine.social.max_distance", 3)
	viper.SetDefault("engine.fanout_timeout", "2s")

	// Search defaults
	viper.SetDefault("search.default_limit", 20)
	viper.SetDefault("search.max_limit", 100)
	viper.SetDefault("search.max_corpus_size", 2000)

	// Monitoring defaults
	viper.SetDefault("monitoring.enabled", true)
	viper.SetDefault("monitoring.metrics_path", "/metrics")

	// Security defaults
	viper.SetDefault("security.cors.allowed_origins", []string{"*"})
	viper.SetDefault("security.cors.allowed_methods", []string{"GET", "POST", "OPTIONS"})
	viper.SetDefault("security.cors.allowed_headers", []string{"*"})
}
