package raffle

import "time"

const (
	// ProbabilityTotal is the target sum of active prize probabilities, in percent.
	ProbabilityTotal = 100.0

	// ProbabilityTolerance is the tolerance used when validating the 100% invariant.
	// The configuration gate compares with this epsilon instead of exact equality.
	ProbabilityTolerance = 0.0001

	// DefaultHistoryCap is the maximum number of ledger entries kept, separator
	// sentinels included.
	DefaultHistoryCap = 1000

	// PoolKey is the storage key for the serialized prize pool.
	PoolKey = "raffle:prizes"

	// HistoryKey is the storage key for the serialized history ledger.
	HistoryKey = "raffle:history"

	// SettingKeyPrefix is the prefix for loose setting keys.
	SettingKeyPrefix = "raffle:setting:"

	// MaxSerializedSize is the maximum allowed size for one persisted blob (5MB).
	MaxSerializedSize = 5 * 1024 * 1024

	// DefaultRetryAttempts is the default number of retries for store operations.
	DefaultRetryAttempts = 3

	// DefaultRetryInterval is the base delay between store retries.
	DefaultRetryInterval = 100 * time.Millisecond

	// MaxRetryAttempts is the largest retry count accepted by configuration.
	MaxRetryAttempts = 10

	// DefaultTextColor is the prize text color used when none is given.
	DefaultTextColor = "#333333"

	// DefaultBackgroundColor is the prize background color used when none is given.
	DefaultBackgroundColor = "#ffffff"
)

const (
	// DefaultBreakerName is the default circuit breaker name.
	DefaultBreakerName = "raffle-store"

	// DefaultBreakerMaxRequests is the default number of probe requests allowed
	// while the breaker is half-open.
	DefaultBreakerMaxRequests = 3

	// DefaultBreakerInterval is the default counting window.
	DefaultBreakerInterval = 60 * time.Second

	// DefaultBreakerTimeout is the default open-state cool-down.
	DefaultBreakerTimeout = 30 * time.Second

	// DefaultBreakerFailureRatio is the default failure ratio that trips the breaker.
	DefaultBreakerFailureRatio = 0.6

	// DefaultBreakerMinRequests is the default minimum sample before tripping.
	DefaultBreakerMinRequests = 3
)

const (
	DefaultRedisAddr         = "localhost:6379"
	DefaultRedisPassword     = ""
	DefaultRedisDB           = 0
	DefaultRedisPoolSize     = 10
	DefaultRedisMinIdleConns = 2
	DefaultRedisMaxRetries   = 3
	DefaultRedisDialTimeout  = 5 * time.Second
	DefaultRedisReadTimeout  = 3 * time.Second
	DefaultRedisWriteTimeout = 3 * time.Second
	DefaultRedisPoolTimeout  = 4 * time.Second
)
