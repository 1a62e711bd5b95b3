package service_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/crs/internal/domain/models"
	"github.com/turtacn/crs/internal/domain/repository"
	"github.com/turtacn/crs/pkg/constants"
	"github.com/turtacn/crs/pkg/errors"
)

// fakeServiceRepo is an in-memory ServiceRepository with the same conflict
// and compare-and-swap semantics as the gorm implementation.
type fakeServiceRepo struct {
	mu       sync.Mutex
	services map[string]*models.Service
}

func newFakeServiceRepo() *fakeServiceRepo {
	return &fakeServiceRepo{services: make(map[string]*models.Service)}
}

func (r *fakeServiceRepo) key(name, version string) string { return name + "@" + version }

func (r *fakeServiceRepo) Create(_ context.Context, svc *models.Service) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := r.key(svc.Name, svc.Version)
	if _, exists := r.services[k]; exists {
		return errors.ErrServiceExists(svc.Name, svc.Version)
	}
	clone := *svc
	r.services[k] = &clone
	return nil
}

func (r *fakeServiceRepo) FindByNameVersion(_ context.Context, name, version string) (*models.Service, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	svc, exists := r.services[r.key(name, version)]
	if !exists {
		return nil, errors.ErrServiceNotFound(name, version)
	}
	clone := *svc
	return &clone, nil
}

func (r *fakeServiceRepo) List(_ context.Context, limit, offset int) ([]*models.Service, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := make([]*models.Service, 0, len(r.services))
	for _, svc := range r.services {
		clone := *svc
		all = append(all, &clone)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Name != all[j].Name {
			return all[i].Name < all[j].Name
		}
		return all[i].Version < all[j].Version
	})
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (r *fakeServiceRepo) RebindModel(_ context.Context, name, version string, newModelID uuid.UUID, expectedGeneration int64) (*models.Service, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	svc, exists := r.services[r.key(name, version)]
	if !exists {
		return nil, errors.ErrServiceNotFound(name, version)
	}
	if svc.Generation != expectedGeneration {
		return nil, errors.ErrGenerationConflict(name, version, expectedGeneration)
	}
	svc.ModelID = newModelID
	svc.Generation++
	svc.UpdatedAt = time.Now().UTC()
	clone := *svc
	return &clone, nil
}

func (r *fakeServiceRepo) Delete(_ context.Context, name, version string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := r.key(name, version)
	if _, exists := r.services[k]; !exists {
		return errors.ErrServiceNotFound(name, version)
	}
	delete(r.services, k)
	return nil
}

// boundModelIDs returns the set of model IDs some service is bound to.
func (r *fakeServiceRepo) boundModelIDs() map[uuid.UUID]bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	bound := make(map[uuid.UUID]bool, len(r.services))
	for _, svc := range r.services {
		bound[svc.ModelID] = true
	}
	return bound
}

// fakeModelRepo is an in-memory ModelRepository. When refs is set, orphan
// pruning consults it for live bindings, mirroring the gorm subquery.
type fakeModelRepo struct {
	mu        sync.Mutex
	artifacts map[uuid.UUID]*models.ModelArtifact
	refs      *fakeServiceRepo
}

func newFakeModelRepo() *fakeModelRepo {
	return &fakeModelRepo{artifacts: make(map[uuid.UUID]*models.ModelArtifact)}
}

func (r *fakeModelRepo) Save(_ context.Context, artifact *models.ModelArtifact) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *artifact
	r.artifacts[artifact.ID] = &clone
	return nil
}

func (r *fakeModelRepo) FindByID(_ context.Context, id uuid.UUID) (*models.ModelArtifact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	artifact, exists := r.artifacts[id]
	if !exists {
		return nil, errors.ErrModelNotFound(id.String())
	}
	clone := *artifact
	return &clone, nil
}

func (r *fakeModelRepo) List(_ context.Context, limit, offset int) ([]*models.ModelArtifact, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := make([]*models.ModelArtifact, 0, len(r.artifacts))
	for _, artifact := range r.artifacts {
		clone := *artifact
		all = append(all, &clone)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (r *fakeModelRepo) DeleteOrphans(_ context.Context, keepDays int) (int64, error) {
	referenced := make(map[uuid.UUID]bool)
	if r.refs != nil {
		referenced = r.refs.boundModelIDs()
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -keepDays)

	r.mu.Lock()
	defer r.mu.Unlock()
	var removed int64
	for id, artifact := range r.artifacts {
		if referenced[id] || !artifact.CreatedAt.Before(cutoff) {
			continue
		}
		delete(r.artifacts, id)
		removed++
	}
	return removed, nil
}

// recordingPublisher captures audit events for assertions.
type recordingPublisher struct {
	mu     sync.Mutex
	events []*models.AuditEvent
}

func (p *recordingPublisher) Publish(_ context.Context, event *models.AuditEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) lastOfType(eventType constants.AuditEventType) *models.AuditEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := len(p.events) - 1; i >= 0; i-- {
		if p.events[i].Type == eventType {
			return p.events[i]
		}
	}
	return nil
}

func (p *recordingPublisher) eventTypes() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]string, 0, len(p.events))
	for _, e := range p.events {
		types = append(types, string(e.Type))
	}
	return types
}

var (
	_ repository.ServiceRepository = (*fakeServiceRepo)(nil)
	_ repository.ModelRepository   = (*fakeModelRepo)(nil)
)
