package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryArtifactStorePutGet(t *testing.T) {
	store := NewInMemoryArtifactStore("https://artifacts.test")
	ctx := context.Background()

	type record struct {
		Rut  string `json:"rut"`
		Name string `json:"name"`
	}

	ref, err := store.Put(ctx, "onboarding/76543210-5/p1/LegalEntities/EntidadLegal.json", record{Rut: "76543210-5", Name: "ACME SPA"})
	require.NoError(t, err)
	assert.Equal(t, "https://artifacts.test/onboarding/76543210-5/p1/LegalEntities/EntidadLegal.json", ref.URL)
	assert.Positive(t, ref.Size)

	var got record
	require.NoError(t, store.Get(ctx, ref.Key, &got))
	assert.Equal(t, "ACME SPA", got.Name)
}

func TestInMemoryArtifactStoreOverwriteIsIdempotent(t *testing.T) {
	store := NewInMemoryArtifactStore("https://artifacts.test")
	ctx := context.Background()
	key := StudyKey("76543210-5", "p1")

	first, err := store.Put(ctx, key, map[string]int{"v": 1})
	require.NoError(t, err)
	second, err := store.Put(ctx, key, map[string]int{"v": 1})
	require.NoError(t, err)

	assert.Equal(t, first, second, "re-storing identical input must yield an identical reference")
	assert.Equal(t, 1, store.Len(), "overwrite must not duplicate")

	var got map[string]int
	require.NoError(t, store.Get(ctx, key, &got))
	assert.Equal(t, map[string]int{"v": 1}, got)
}

func TestInMemoryArtifactStoreErrors(t *testing.T) {
	store := NewInMemoryArtifactStore("https://artifacts.test")
	ctx := context.Background()

	_, err := store.Put(ctx, "", "content")
	assert.ErrorIs(t, err, ErrArtifactKeyEmpty)

	var out any
	assert.ErrorIs(t, store.Get(ctx, "missing/key.json", &out), ErrArtifactNotFound)
	assert.ErrorIs(t, store.Get(ctx, "", &out), ErrArtifactKeyEmpty)
}

func TestArtifactKeys(t *testing.T) {
	assert.Equal(t,
		"onboarding/76543210-5/proc-1/LegalEntities/EntidadLegal.json",
		LegalEntityKey("76543210-5", "proc-1"))
	assert.Equal(t,
		"onboarding/76543210-5/proc-1/BciApiFilters/ValidCompanyApiFilters.json",
		FilterResultKey("76543210-5", "proc-1"))
	assert.Equal(t,
		"onboarding/76543210-5/proc-1/legalbot/legalbot_response.json",
		StudyKey("76543210-5", "proc-1"))
	assert.Equal(t,
		"onboarding/76543210-5/proc-1/legalbot/legalbot_study.json",
		ProcessedStudyKey("76543210-5", "proc-1"))
}
