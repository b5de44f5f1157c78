package server

import (
	"context"
	"fmt"

	"github.com/vanshika/paymybuddy/backend/internal/graph"
)

// HealthService defines behaviour for readiness probes.
type HealthService interface {
	Probe(ctx context.Context) error
}

// GraphHealthService verifies graph connectivity as part of health checks.
type GraphHealthService struct {
	Client graph.Client
}

// Probe implements the HealthService interface.
func (s GraphHealthService) Probe(ctx context.Context) error {
	if s.Client == nil {
		return nil
	}
	return s.Client.VerifyConnectivity(ctx)
}

// NamedCheck labels a dependency probe.
type NamedCheck struct {
	Name  string
	Check HealthService
}

// CheckError reports which named dependency failed.
type CheckError struct {
	Name string
	Err  error
}

func (e *CheckError) Error() string { return fmt.Sprintf("%s: %v", e.Name, e.Err) }

func (e *CheckError) Unwrap() error { return e.Err }

// CompositeHealth probes every dependency and reports the first failure as a
// *CheckError.
type CompositeHealth []NamedCheck

func (c CompositeHealth) Probe(ctx context.Context) error {
	for _, nc := range c {
		if nc.Check == nil {
			continue
		}
		if err := nc.Check.Probe(ctx); err != nil {
			return &CheckError{Name: nc.Name, Err: err}
		}
	}
	return nil
}
