package main

import (
	"context"
	"time"

	"kaseti/internal/bootstrap"
)

const initializeTimeout = 2 * time.Minute

type BootstrapService struct {
	bootstrap *bootstrap.Service
}

func NewBootstrapService(service *bootstrap.Service) *BootstrapService {
	return &BootstrapService{bootstrap: service}
}

// Initialize is safe to call from several frontend entry points at once;
// they all share a single underlying attempt.
func (s *BootstrapService) Initialize() error {
	ctx, cancel := context.WithTimeout(context.Background(), initializeTimeout)
	defer cancel()

	return s.bootstrap.Initialize(ctx)
}

func (s *BootstrapService) GetInitialState() bootstrap.StartupSnapshot {
	return s.bootstrap.Snapshot()
}

// ReloadLibrary replaces the library in full.
func (s *BootstrapService) ReloadLibrary() error {
	ctx, cancel := context.WithTimeout(context.Background(), initializeTimeout)
	defer cancel()

	return s.bootstrap.LoadLibraryData(ctx)
}
