package services_test

import (
	"context"
	"testing"

	"github.com/ps-vitor/sub2lease-seed/internal/domain"
	"github.com/ps-vitor/sub2lease-seed/internal/repositories"
	"github.com/ps-vitor/sub2lease-seed/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmptyRemovesDocuments(t *testing.T) {
	repo := repositories.NewMemoryDocumentRepository()
	ctx := context.Background()
	_, err := repo.InsertMany(ctx, "users", []domain.Document{{{Key: "name", Value: "a"}}, {{Key: "name", Value: "b"}}})
	require.NoError(t, err)

	svc := services.NewEmptyService(repo, []string{"users", "listings"}, nil)
	n, err := svc.Empty(ctx, "users")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.Zero(t, repo.Count("users"))
}

func TestEmptyRejectsUnknownCollection(t *testing.T) {
	repo := repositories.NewMemoryDocumentRepository()
	ctx := context.Background()
	_, err := repo.InsertMany(ctx, "globals", []domain.Document{{{Key: "k", Value: 1}}})
	require.NoError(t, err)

	svc := services.NewEmptyService(repo, []string{"users"}, nil)
	_, err = svc.Empty(ctx, "globals")
	assert.ErrorIs(t, err, services.ErrUnknownCollection)
	assert.Equal(t, 1, repo.Count("globals"))
}
