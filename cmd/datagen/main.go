package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vanshika/paymybuddy/backend/internal/generator"
)

func main() {
	cfg := generator.DefaultConfig()
	var (
		users       = flag.Int("users", cfg.NumUsers, "number of users to generate")
		friends     = flag.Int("friends", cfg.FriendsPerUser, "friend edges per user")
		transfers   = flag.Int("transfers", cfg.NumTransfers, "number of transfers to generate")
		descChance  = flag.Float64("description-chance", cfg.DescriptionChance, "probability that a transfer has a description")
		maxAmount   = flag.String("max-amount", cfg.MaxAmount.String(), "largest transfer amount")
		password    = flag.String("password", cfg.Password, "password given to every generated user")
		seed        = flag.Int64("seed", cfg.Seed, "random seed for deterministic generation")
		outputDir   = flag.String("output-dir", "data", "directory to write users.json, connections.json and transfers.json")
		writeStdout = flag.Bool("stdout", false, "write combined dataset to stdout instead of files")
	)
	flag.Parse()

	maxAmt, err := decimal.NewFromString(*maxAmount)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid -max-amount %q: %v\n", *maxAmount, err)
		os.Exit(2)
	}

	genCfg := generator.Config{
		NumUsers:          *users,
		FriendsPerUser:    *friends,
		NumTransfers:      *transfers,
		DescriptionChance: clampProbability(*descChance),
		MaxAmount:         maxAmt,
		Password:          *password,
		Seed:              *seed,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	gen := generator.New(genCfg)
	dataset, err := gen.Generate(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "generation failed: %v\n", err)
		os.Exit(1)
	}

	if *writeStdout {
		if err := json.NewEncoder(os.Stdout).Encode(dataset); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write dataset to stdout: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := generator.WriteDataset(dataset, *outputDir); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write dataset: %v\n", err)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stdout, "Generated %d users, %d connections and %d transfers into %s\n",
		len(dataset.Users), len(dataset.Connections), len(dataset.Transfers), *outputDir)
}

func clampProbability(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 1 {
		return 1
	}
	return value
}
