package infrastructure

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adsight/internal/domain"
	"adsight/pkg/logger"
)

func TestAccountRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewAccountRepository(logger.New("fatal"))

	require.NoError(t, repo.Upsert(ctx, domain.AdAccount{ID: "act_2", Name: "Inactive", AccessToken: "t2"}))
	require.NoError(t, repo.Upsert(ctx, domain.AdAccount{ID: "act_1", Name: "Main", AccessToken: "t1", Active: true}))

	got, err := repo.GetByID(ctx, "act_2")
	require.NoError(t, err)
	assert.Equal(t, "Inactive", got.Name)

	active, err := repo.GetActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, "act_1", active.ID)

	accounts, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, "act_1", accounts[0].ID)
}

func TestAccountRepository_MissingAccount(t *testing.T) {
	ctx := context.Background()
	repo := NewAccountRepository(logger.New("fatal"))

	_, err := repo.GetByID(ctx, "act_ghost")
	assert.ErrorIs(t, err, domain.ErrNoActiveAccount)

	_, err = repo.GetActive(ctx)
	assert.ErrorIs(t, err, domain.ErrNoActiveAccount)
}

func TestAccountRepository_UpsertRequiresID(t *testing.T) {
	repo := NewAccountRepository(logger.New("fatal"))
	assert.Error(t, repo.Upsert(context.Background(), domain.AdAccount{}))
}
