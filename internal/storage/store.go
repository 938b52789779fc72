// Package storage provides the audit-trail object store for validation
// artifacts. Every record fetched from an external registry is persisted
// verbatim under a key derived from the RUT and process ID, so a run leaves
// a complete, append-only paper trail.
package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/goccy/go-json"
)

// Artifact storage errors.
var (
	// ErrArtifactKeyEmpty indicates an empty storage key.
	ErrArtifactKeyEmpty = errors.New("artifact key is empty")

	// ErrArtifactNotFound indicates the requested artifact does not exist.
	ErrArtifactNotFound = errors.New("artifact not found")
)

// Ref identifies a stored artifact and where it can be retrieved.
type Ref struct {
	Key  string `json:"key"`
	URL  string `json:"url"`
	Size int64  `json:"size"`
}

// ArtifactStore persists JSON artifacts for the validation audit trail.
// Writes are idempotent: storing the same key twice overwrites, never
// duplicates, so activity retries are safe.
type ArtifactStore interface {
	// Put serializes value as JSON and stores it under key, returning a
	// reference to the stored object.
	Put(ctx context.Context, key string, value any) (Ref, error)

	// Get retrieves the artifact stored under key and unmarshals it into
	// out. Returns ErrArtifactNotFound for missing keys.
	Get(ctx context.Context, key string, out any) error
}

// Artifact key layout: onboarding/{rut}/{processId}/<category>/<artifact>.json.
const (
	legalEntityKeyFmt  = "onboarding/%s/%s/LegalEntities/EntidadLegal.json"
	filterResultKeyFmt = "onboarding/%s/%s/BciApiFilters/ValidCompanyApiFilters.json"
	studyKeyFmt        = "onboarding/%s/%s/legalbot/legalbot_response.json"
	studyProcessedFmt  = "onboarding/%s/%s/legalbot/legalbot_study.json"
)

// LegalEntityKey returns the storage key for the raw legal-entity record.
func LegalEntityKey(rut, processID string) string {
	return fmt.Sprintf(legalEntityKeyFmt, rut, processID)
}

// FilterResultKey returns the storage key for the regulator filter response.
func FilterResultKey(rut, processID string) string {
	return fmt.Sprintf(filterResultKeyFmt, rut, processID)
}

// StudyKey returns the storage key for the raw ownership-registry response.
func StudyKey(rut, processID string) string {
	return fmt.Sprintf(studyKeyFmt, rut, processID)
}

// ProcessedStudyKey returns the storage key for the processed study payload.
func ProcessedStudyKey(rut, processID string) string {
	return fmt.Sprintf(studyProcessedFmt, rut, processID)
}

// InMemoryArtifactStore provides in-memory artifact storage for development
// and testing. Production deployments plug a distributed object store behind
// the same interface.
type InMemoryArtifactStore struct {
	mu      sync.RWMutex
	baseURL string
	storage map[string][]byte
}

// NewInMemoryArtifactStore creates an empty in-memory store. baseURL
// prefixes the URL reported in artifact references.
func NewInMemoryArtifactStore(baseURL string) *InMemoryArtifactStore {
	return &InMemoryArtifactStore{
		baseURL: baseURL,
		storage: make(map[string][]byte),
	}
}

// Put implements ArtifactStore. Re-storing a key overwrites the previous
// content.
func (s *InMemoryArtifactStore) Put(_ context.Context, key string, value any) (Ref, error) {
	if key == "" {
		return Ref{}, ErrArtifactKeyEmpty
	}

	body, err := json.Marshal(value)
	if err != nil {
		return Ref{}, fmt.Errorf("marshal artifact %q: %w", key, err)
	}

	s.mu.Lock()
	s.storage[key] = body
	s.mu.Unlock()

	return Ref{
		Key:  key,
		URL:  fmt.Sprintf("%s/%s", s.baseURL, key),
		Size: int64(len(body)),
	}, nil
}

// Get implements ArtifactStore.
func (s *InMemoryArtifactStore) Get(_ context.Context, key string, out any) error {
	if key == "" {
		return ErrArtifactKeyEmpty
	}

	s.mu.RLock()
	body, ok := s.storage[key]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrArtifactNotFound, key)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("unmarshal artifact %q: %w", key, err)
	}
	return nil
}

// Len reports the number of stored artifacts. Test helper.
func (s *InMemoryArtifactStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.storage)
}
