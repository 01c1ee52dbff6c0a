package server

import (
	"context"
	"errors"
	"fmt"

	"github.com/vanshika/astronum/backend/internal/graph"
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

// Pinger is satisfied by the SQLite store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// StoreHealthService pings the relational store.
type StoreHealthService struct {
	Store Pinger
}

// Probe implements the HealthService interface.
func (s StoreHealthService) Probe(ctx context.Context) error {
	if s.Store == nil {
		return errors.New("store not configured")
	}
	return s.Store.Ping(ctx)
}

// HealthChecks runs named probes and joins their failures.
type HealthChecks map[string]HealthService

// Probe implements the HealthService interface.
func (h HealthChecks) Probe(ctx context.Context) error {
	var errs []error
	for name, check := range h {
		if check == nil {
			continue
		}
		if err := check.Probe(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}
