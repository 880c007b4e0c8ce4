package raffle

import "errors"

// Error codes and messages for the raffle core
var (
	// ErrMissingActor indicates the draw was requested without an actor name
	ErrMissingActor = errors.New("RAFFLE_001: actor name cannot be empty")

	// ErrPoolExhausted indicates no prize has remaining stock or the total
	// active weight is zero
	ErrPoolExhausted = errors.New("RAFFLE_002: prize pool is empty or exhausted")

	// ErrProbabilityMismatch indicates the active probabilities do not sum to 100
	ErrProbabilityMismatch = errors.New("RAFFLE_003: active probabilities must sum to 100")

	// ErrInvalidProbability indicates a probability outside the [0, 100] range
	ErrInvalidProbability = errors.New("RAFFLE_004: probability must be between 0 and 100")

	// ErrNegativeQuantity indicates a negative prize quantity
	ErrNegativeQuantity = errors.New("RAFFLE_005: quantity cannot be negative")

	// ErrInvalidPrizeName indicates an empty prize name
	ErrInvalidPrizeName = errors.New("RAFFLE_006: prize name cannot be empty")

	// ErrEmptyPrizePool indicates an empty prize pool where one is required
	ErrEmptyPrizePool = errors.New("RAFFLE_007: empty prize pool")

	// ErrInvalidCount indicates an invalid draw count
	ErrInvalidCount = errors.New("RAFFLE_008: draw count must be greater than 0")

	// ErrPrizeNotFound indicates the referenced prize does not exist in the pool
	ErrPrizeNotFound = errors.New("RAFFLE_009: prize not found")

	// ErrImportFormat indicates an imported dataset is missing required columns
	// or contains values that cannot be parsed
	ErrImportFormat = errors.New("RAFFLE_010: imported data is missing required columns or values")

	// ErrHistoryDropped indicates the history ledger was reset after the
	// backend rejected a write; the draw itself was not rolled back
	ErrHistoryDropped = errors.New("RAFFLE_011: history ledger was reset after a failed write")

	// ErrInvalidHistoryCap indicates an invalid history cap configuration
	ErrInvalidHistoryCap = errors.New("RAFFLE_012: history cap must be greater than 0")

	// ErrInvalidRetryAttempts indicates an invalid retry attempts configuration
	ErrInvalidRetryAttempts = errors.New("RAFFLE_013: retry attempts must be between 0 and 10")

	// ErrInvalidRetryInterval indicates an invalid retry interval configuration
	ErrInvalidRetryInterval = errors.New("RAFFLE_014: retry interval cannot be negative")
)
