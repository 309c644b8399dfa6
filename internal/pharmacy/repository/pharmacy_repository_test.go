package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"trialfinder-backend/internal/pharmacy/domain"
	"trialfinder-backend/pkg/firebase/firebasetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFirestoreRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewFirestoreRepository(firebasetest.NewFirestore(t))

	acme := &domain.Pharmacy{OwnerUserID: "owner-1", Name: "Acme Pharmacy", NormalizedName: "acme pharmacy", CreatedAt: time.Now().UTC()}
	require.NoError(t, repo.Create(ctx, acme))
	assert.Equal(t, "acme pharmacy", acme.ID)

	err := repo.Create(ctx, &domain.Pharmacy{OwnerUserID: "owner-2", Name: "ACME  pharmacy", NormalizedName: "acme pharmacy"})
	assert.ErrorIs(t, err, domain.ErrPharmacyNameTaken)

	err = repo.Create(ctx, &domain.Pharmacy{OwnerUserID: "owner-1", Name: "Second", NormalizedName: "second"})
	assert.ErrorIs(t, err, domain.ErrPharmacyAlreadyExists)

	got, err := repo.GetByOwner(ctx, "owner-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Acme Pharmacy", got.Name)

	got, err = repo.GetByNormalizedName(ctx, "acme pharmacy")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "owner-1", got.OwnerUserID)

	got, err = repo.GetByOwner(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestFirestoreRepository_ConcurrentRegistration(t *testing.T) {
	ctx := context.Background()
	repo := NewFirestoreRepository(firebasetest.NewFirestore(t))

	const n = 3
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = repo.Create(ctx, &domain.Pharmacy{
				OwnerUserID:    fmt.Sprintf("owner-%d", i),
				Name:           "Same Name",
				NormalizedName: "same name",
			})
		}()
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		}
	}
	assert.Equal(t, 1, succeeded)

	got, err := repo.GetByNormalizedName(ctx, "same name")
	require.NoError(t, err)
	require.NotNil(t, got)
}
