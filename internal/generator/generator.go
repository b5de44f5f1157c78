package generator

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vanshika/paymybuddy/backend/internal/domain"
	"github.com/vanshika/paymybuddy/backend/internal/service"
)

// ErrTooFewUsers is returned when fewer than two users are requested.
var ErrTooFewUsers = errors.New("at least two users are required")

// Dataset contains the generated users, friend edges and transfers.
type Dataset struct {
	Users       []service.RegisterInput  `json:"users"`
	Connections []service.ConnectionSeed `json:"connections"`
	Transfers   []service.TransferSeed   `json:"transfers"`
}

// Generator produces synthetic accounts and activity. Every generated
// transfer follows a generated friend edge, so the whole dataset replays
// through the connection-checked transfer path.
type Generator struct {
	cfg           Config
	rand          *rand.Rand
	nameFragments nameFragments
}

// New returns a configured Generator instance.
func New(cfg Config) *Generator {
	defaults := DefaultConfig()
	if cfg.NumUsers == 0 {
		cfg.NumUsers = defaults.NumUsers
	}
	if cfg.FriendsPerUser <= 0 {
		cfg.FriendsPerUser = defaults.FriendsPerUser
	}
	if cfg.NumTransfers < 0 {
		cfg.NumTransfers = 0
	}
	if cfg.DescriptionChance < 0 || cfg.DescriptionChance > 1 {
		cfg.DescriptionChance = defaults.DescriptionChance
	}
	if !cfg.MaxAmount.IsPositive() {
		cfg.MaxAmount = defaults.MaxAmount
	}
	if cfg.Password == "" {
		cfg.Password = defaults.Password
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	return &Generator{
		cfg:           cfg,
		rand:          rand.New(rand.NewSource(cfg.Seed)),
		nameFragments: defaultNameFragments(),
	}
}

// Generate synthesises users, friend edges and transfers. It respects context
// cancellation.
func (g *Generator) Generate(ctx context.Context) (Dataset, error) {
	if g.cfg.NumUsers < 2 {
		return Dataset{}, ErrTooFewUsers
	}

	users := make([]service.RegisterInput, g.cfg.NumUsers)
	for i := range users {
		if err := ctx.Err(); err != nil {
			return Dataset{}, err
		}
		first, last := g.randomName()
		users[i] = service.RegisterInput{
			Email:    g.email(first, last, i+1),
			Username: first + " " + last,
			Password: g.cfg.Password,
		}
	}

	friends := g.cfg.FriendsPerUser
	if friends > g.cfg.NumUsers-1 {
		friends = g.cfg.NumUsers - 1
	}

	type edge struct{ from, to int }
	seen := make(map[edge]struct{}, g.cfg.NumUsers*friends)
	var edges []edge
	for from := range users {
		if err := ctx.Err(); err != nil {
			return Dataset{}, err
		}
		for added := 0; added < friends; {
			to := g.rand.Intn(len(users))
			e := edge{from, to}
			if to == from {
				continue
			}
			if _, dup := seen[e]; dup {
				continue
			}
			seen[e] = struct{}{}
			edges = append(edges, e)
			added++
		}
	}

	connections := make([]service.ConnectionSeed, len(edges))
	for i, e := range edges {
		connections[i] = service.ConnectionSeed{
			UserEmail:       users[e.from].Email,
			ConnectionEmail: users[e.to].Email,
		}
	}

	transfers := make([]service.TransferSeed, g.cfg.NumTransfers)
	for i := range transfers {
		if err := ctx.Err(); err != nil {
			return Dataset{}, err
		}
		e := edges[g.rand.Intn(len(edges))]
		transfers[i] = service.TransferSeed{
			SenderEmail:   users[e.from].Email,
			ReceiverEmail: users[e.to].Email,
			Amount:        g.randomAmount(),
			Description:   g.maybeDescription(),
		}
	}

	return Dataset{Users: users, Connections: connections, Transfers: transfers}, nil
}

// randomAmount returns a value in (0, MaxAmount] with cent precision.
func (g *Generator) randomAmount() decimal.Decimal {
	maxCents := g.cfg.MaxAmount.Shift(domain.AmountScale).IntPart()
	if maxCents < 1 {
		maxCents = 1
	}
	return decimal.New(g.rand.Int63n(maxCents)+1, -domain.AmountScale)
}

func (g *Generator) maybeDescription() *string {
	if g.rand.Float64() >= g.cfg.DescriptionChance {
		return nil
	}
	note := g.nameFragments.notes[g.rand.Intn(len(g.nameFragments.notes))]
	return &note
}

func (g *Generator) randomName() (string, string) {
	return g.nameFragments.first[g.rand.Intn(len(g.nameFragments.first))],
		g.nameFragments.last[g.rand.Intn(len(g.nameFragments.last))]
}

// email embeds the user's ordinal so addresses stay unique.
func (g *Generator) email(first, last string, n int) string {
	host := g.nameFragments.domains[g.rand.Intn(len(g.nameFragments.domains))]
	return fmt.Sprintf("%s.%s.%d@%s", strings.ToLower(first), strings.ToLower(last), n, host)
}

type nameFragments struct {
	first   []string
	last    []string
	domains []string
	notes   []string
}

func defaultNameFragments() nameFragments {
	return nameFragments{
		first:   []string{"Jane", "John", "Alex", "Priya", "Liu", "Maria", "Omar", "Sofia", "Noah", "Emma", "Lucas", "Mia", "Ava", "Ethan", "Zara"},
		last:    []string{"Doe", "Smith", "Chen", "Patel", "Garcia", "Khan", "Kim", "Ivanov", "Nguyen", "Silva", "Brown", "Lee"},
		domains: []string{"example.com", "mail.com", "paymybuddy.io", "buddies.net"},
		notes:   []string{"Dinner split", "Movie tickets", "Rent share", "Birthday gift", "Concert", "Groceries", "Taxi home", "Weekend trip"},
	}
}
