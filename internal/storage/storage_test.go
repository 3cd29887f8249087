package storage_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foliohq/folio/internal/common"
	"github.com/foliohq/folio/internal/interfaces"
	"github.com/foliohq/folio/internal/models"
	"github.com/foliohq/folio/internal/storage"
)

// The same contract runs against both backends.
func TestStoreContract(t *testing.T) {
	drivers := []string{"file", "sqlite"}
	for _, driver := range drivers {
		t.Run(driver, func(t *testing.T) {
			store, err := storage.New(common.StorageConfig{
				Driver: driver,
				Path:   t.TempDir(),
			}, common.NewSilentLogger())
			require.NoError(t, err)
			defer store.Close()

			runContract(t, store)
		})
	}
}

func runContract(t *testing.T, store interfaces.Store) {
	ctx := context.Background()

	t.Run("user lifecycle", func(t *testing.T) {
		_, err := store.FindUser(ctx, "amy@example.com")
		assert.ErrorIs(t, err, interfaces.ErrNotFound)

		user := &models.User{
			ID:           "u-1",
			Email:        "amy@example.com",
			PasswordHash: "$2a$10$fakehash",
			CreatedAt:    time.Now().UTC().Truncate(time.Second),
		}
		initial := models.NewPortfolio()
		initial.Buy("AAPL", 10, 150)
		require.NoError(t, store.CreateUser(ctx, user, initial))

		found, err := store.FindUser(ctx, "amy@example.com")
		require.NoError(t, err)
		assert.Equal(t, user.ID, found.ID)
		assert.Equal(t, user.PasswordHash, found.PasswordHash)
		assert.True(t, user.CreatedAt.Equal(found.CreatedAt))

		p, err := store.GetPortfolio(ctx, "amy@example.com")
		require.NoError(t, err)
		require.NotNil(t, p.FindHolding("AAPL"))
		assert.Equal(t, 10.0, p.FindHolding("AAPL").Quantity)
	})

	t.Run("portfolio round trip", func(t *testing.T) {
		_, err := store.GetPortfolio(ctx, "guest")
		assert.ErrorIs(t, err, interfaces.ErrNotFound)

		p := models.NewPortfolio()
		p.Buy("0700.HK", 100, 350)
		p.Buy("GOOG", 2, 140)
		p.SetCash("CNY", 9000)
		require.NoError(t, store.SavePortfolio(ctx, "guest", p))

		got, err := store.GetPortfolio(ctx, "guest")
		require.NoError(t, err)
		assert.Equal(t, p.Symbols(), got.Symbols())
		assert.Equal(t, p.Cash, got.Cash)

		// Overwrite wins.
		p.Sell("GOOG", 2, 150)
		require.NoError(t, store.SavePortfolio(ctx, "guest", p))
		got, err = store.GetPortfolio(ctx, "guest")
		require.NoError(t, err)
		assert.Nil(t, got.FindHolding("GOOG"))
	})

	t.Run("otp consume on success", func(t *testing.T) {
		otp := &models.OTPRecord{
			Email:     "bob@example.com",
			Code:      "123456",
			ExpiresAt: time.Now().Add(10 * time.Minute),
		}
		require.NoError(t, store.SaveOTP(ctx, otp))

		ok, err := store.VerifyOTP(ctx, "bob@example.com", "999999")
		require.NoError(t, err)
		assert.False(t, ok, "mismatched code must not verify")

		ok, err = store.VerifyOTP(ctx, "bob@example.com", "123456")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = store.VerifyOTP(ctx, "bob@example.com", "123456")
		require.NoError(t, err)
		assert.False(t, ok, "code must be consumed")
	})

	t.Run("otp overwrite on resend", func(t *testing.T) {
		first := &models.OTPRecord{Email: "eve@example.com", Code: "111111", ExpiresAt: time.Now().Add(10 * time.Minute)}
		second := &models.OTPRecord{Email: "eve@example.com", Code: "222222", ExpiresAt: time.Now().Add(10 * time.Minute)}
		require.NoError(t, store.SaveOTP(ctx, first))
		require.NoError(t, store.SaveOTP(ctx, second))

		ok, err := store.VerifyOTP(ctx, "eve@example.com", "111111")
		require.NoError(t, err)
		assert.False(t, ok, "overwritten code must not verify")

		ok, err = store.VerifyOTP(ctx, "eve@example.com", "222222")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("otp expiry", func(t *testing.T) {
		otp := &models.OTPRecord{
			Email:     "late@example.com",
			Code:      "123456",
			ExpiresAt: time.Now().Add(-time.Minute),
		}
		require.NoError(t, store.SaveOTP(ctx, otp))

		ok, err := store.VerifyOTP(ctx, "late@example.com", "123456")
		require.NoError(t, err)
		assert.False(t, ok, "expired code must not verify")
	})

	t.Run("list owners", func(t *testing.T) {
		owners, err := store.ListOwners(ctx)
		require.NoError(t, err)
		assert.Contains(t, owners, "guest")
		assert.Contains(t, owners, "amy@example.com")
	})
}

func TestUnknownDriver(t *testing.T) {
	_, err := storage.New(common.StorageConfig{Driver: "surreal", Path: t.TempDir()}, common.NewSilentLogger())
	require.Error(t, err)
}
