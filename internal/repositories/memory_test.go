package repositories

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/resume-matcher/internal/models"
)

func TestMemoryMatchRepository_DuplicatePair(t *testing.T) {
	repo := NewMemoryMatchRepository()
	ctx := context.Background()
	jobID, candidateID := uuid.New(), uuid.New()

	first := &models.ResumeMatchScore{ID: uuid.New(), JobPostingID: jobID, CandidateProfileID: candidateID, MatchingScore: 80}
	second := &models.ResumeMatchScore{ID: uuid.New(), JobPostingID: jobID, CandidateProfileID: candidateID, MatchingScore: 20}

	require.NoError(t, repo.Create(ctx, first))
	err := repo.Create(ctx, second)
	require.ErrorIs(t, err, ErrDuplicateMatch)

	got, found, err := repo.FindByPair(ctx, jobID, candidateID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, first.ID, got.ID)
	assert.Equal(t, 80.0, got.MatchingScore)
}

func TestMemoryMatchRepository_ConcurrentCreateKeepsOneRow(t *testing.T) {
	repo := NewMemoryMatchRepository()
	ctx := context.Background()
	jobID, candidateID := uuid.New(), uuid.New()

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- repo.Create(ctx, &models.ResumeMatchScore{ID: uuid.New(), JobPostingID: jobID, CandidateProfileID: candidateID})
		}()
	}
	wg.Wait()
	close(errs)

	var created, duplicates int
	for err := range errs {
		switch err {
		case nil:
			created++
		case ErrDuplicateMatch:
			duplicates++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, created)
	assert.Equal(t, 9, duplicates)
	assert.Equal(t, 1, repo.Len())
}

func TestMemoryMatchRepository_ListOrdersByScore(t *testing.T) {
	repo := NewMemoryMatchRepository()
	ctx := context.Background()
	for _, score := range []float64{10, 90, 55} {
		require.NoError(t, repo.Create(ctx, &models.ResumeMatchScore{
			ID: uuid.New(), JobPostingID: uuid.New(), CandidateProfileID: uuid.New(), MatchingScore: score,
		}))
	}

	matches, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, matches, 3)
	assert.Equal(t, []float64{90, 55, 10}, []float64{matches[0].MatchingScore, matches[1].MatchingScore, matches[2].MatchingScore})
}

func TestMemoryCandidateRepository_FindMissing(t *testing.T) {
	repo := NewMemoryCandidateRepository()
	got, found, err := repo.FindByID(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, got)
}

func TestMemoryCandidateRepository_UpdateStructuredData(t *testing.T) {
	repo := NewMemoryCandidateRepository()
	ctx := context.Background()
	c := &models.CandidateProfile{ID: uuid.New(), StructuredData: []byte(`{"skills":["b","a"]}`), CreatedAt: time.Now()}
	require.NoError(t, repo.Create(ctx, c))

	c.StructuredData = []byte(`{"skills":["a","b"]}`)
	require.NoError(t, repo.UpdateStructuredData(ctx, c))

	got, found, err := repo.FindByID(ctx, c.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.JSONEq(t, `{"skills":["a","b"]}`, string(got.StructuredData))

	missing := &models.CandidateProfile{ID: uuid.New()}
	assert.ErrorIs(t, repo.UpdateStructuredData(ctx, missing), ErrNotFound)
}

func TestMemoryCandidateRepository_ListNewestFirst(t *testing.T) {
	repo := NewMemoryCandidateRepository()
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	older := &models.CandidateProfile{ID: uuid.New(), CreatedAt: base}
	newer := &models.CandidateProfile{ID: uuid.New(), CreatedAt: base.Add(time.Hour)}
	require.NoError(t, repo.Create(ctx, older))
	require.NoError(t, repo.Create(ctx, newer))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, newer.ID, list[0].ID)
}

func TestMemoryJobRepository_ListFilters(t *testing.T) {
	repo := NewMemoryJobRepository()
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, &models.JobPosting{ID: uuid.New(), Title: "Backend Engineer", Company: "Acme"}))
	require.NoError(t, repo.Create(ctx, &models.JobPosting{ID: uuid.New(), Title: "Data Scientist", Company: "Globex"}))

	jobs, err := repo.List(ctx, JobFilter{Title: "engineer"})
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "Acme", jobs[0].Company)

	jobs, err = repo.List(ctx, JobFilter{Company: "GLOB"})
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "Data Scientist", jobs[0].Title)

	jobs, err = repo.List(ctx, JobFilter{})
	require.NoError(t, err)
	assert.Len(t, jobs, 2)
}
