package generator

import "github.com/shopspring/decimal"

// Config drives the synthetic data generator.
type Config struct {
	NumUsers          int
	FriendsPerUser    int
	NumTransfers      int
	DescriptionChance float64
	MaxAmount         decimal.Decimal
	Password          string
	Seed              int64
}

// DefaultConfig returns settings for a small demo dataset.
func DefaultConfig() Config {
	return Config{
		NumUsers:          200,
		FriendsPerUser:    5,
		NumTransfers:      2000,
		DescriptionChance: 0.7,
		MaxAmount:         decimal.NewFromInt(500),
		Password:          "password",
		Seed:              42,
	}
}
