package api

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgapi "github.com/lunabook/sessionkit/pkg/api"
)

func TestRenewer_DedupesConcurrentCalls(t *testing.T) {
	store := &mockStore{pair: &pkgapi.TokenPair{
		AccessToken:  "old-access",
		RefreshToken: "old-refresh",
	}}

	var refreshCalls atomic.Int64
	renewer := &Renewer{
		store: store,
		refresh: func(ctx context.Context, refreshToken string) (*pkgapi.TokenPair, error) {
			refreshCalls.Add(1)
			// Имитация сетевой задержки, чтобы все горутины успели встать в очередь
			time.Sleep(50 * time.Millisecond)
			return &pkgapi.TokenPair{
				AccessToken:  "new-access",
				RefreshToken: "new-refresh",
			}, nil
		},
	}

	const goroutines = 20

	var wg sync.WaitGroup
	results := make([]*pkgapi.TokenPair, goroutines)
	errs := make([]error, goroutines)

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = renewer.Renew(context.Background())
		}(i)
	}
	wg.Wait()

	// Все дождались единственного обмена и получили общий результат
	assert.Equal(t, int64(1), refreshCalls.Load())
	for i := 0; i < goroutines; i++ {
		require.NoError(t, errs[i])
		require.NotNil(t, results[i])
		assert.Equal(t, "new-access", results[i].AccessToken)
	}

	// Пара записана в хранилище ровно один раз
	assert.Equal(t, 1, store.setCalls)
	current := store.current()
	require.NotNil(t, current)
	assert.Equal(t, "new-refresh", current.RefreshToken)
}

func TestRenewer_SlotFreesAfterCompletion(t *testing.T) {
	store := &mockStore{pair: &pkgapi.TokenPair{
		AccessToken:  "a",
		RefreshToken: "r",
	}}

	var refreshCalls atomic.Int64
	renewer := &Renewer{
		store: store,
		refresh: func(ctx context.Context, refreshToken string) (*pkgapi.TokenPair, error) {
			n := refreshCalls.Add(1)
			return &pkgapi.TokenPair{
				AccessToken:  fmt.Sprintf("access-%d", n),
				RefreshToken: fmt.Sprintf("refresh-%d", n),
			}, nil
		},
	}
	ctx := context.Background()

	first, err := renewer.Renew(ctx)
	require.NoError(t, err)

	// Последовательный вызов запускает новый обмен, а не отдает старый результат
	second, err := renewer.Renew(ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(2), refreshCalls.Load())
	assert.NotEqual(t, first.AccessToken, second.AccessToken)
}

func TestRenewer_NoRefreshToken(t *testing.T) {
	tests := []struct {
		store *mockStore
		name  string
	}{
		{name: "empty store", store: &mockStore{}},
		{name: "pair without refresh", store: &mockStore{pair: &pkgapi.TokenPair{AccessToken: "a"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var expired atomic.Bool
			renewer := &Renewer{
				store: tt.store,
				refresh: func(ctx context.Context, refreshToken string) (*pkgapi.TokenPair, error) {
					t.Fatal("refresh must not be called")
					return nil, nil
				},
				onSessionExpired: func(ctx context.Context) { expired.Store(true) },
			}

			_, err := renewer.Renew(context.Background())
			assert.ErrorIs(t, err, ErrNoRefreshToken)
			assert.Equal(t, 1, tt.store.clearCalls)
			assert.True(t, expired.Load())
		})
	}
}

func TestRenewer_RejectionIsTerminal(t *testing.T) {
	for _, statusCode := range []int{
		http.StatusBadRequest,
		http.StatusUnauthorized,
		http.StatusForbidden,
	} {
		t.Run(http.StatusText(statusCode), func(t *testing.T) {
			store := &mockStore{pair: &pkgapi.TokenPair{
				AccessToken:  "a",
				RefreshToken: "r",
			}}

			var expired atomic.Bool
			renewer := &Renewer{
				store: store,
				refresh: func(ctx context.Context, refreshToken string) (*pkgapi.TokenPair, error) {
					return nil, &HTTPError{StatusCode: statusCode, Message: "refresh token revoked"}
				},
				onSessionExpired: func(ctx context.Context) { expired.Store(true) },
			}

			_, err := renewer.Renew(context.Background())
			assert.ErrorIs(t, err, ErrRenewalRejected)

			assert.Nil(t, store.current())
			assert.True(t, expired.Load())
		})
	}
}

func TestRenewer_NetworkErrorKeepsStore(t *testing.T) {
	store := &mockStore{pair: &pkgapi.TokenPair{
		AccessToken:  "a",
		RefreshToken: "r",
	}}

	var expired atomic.Bool
	renewer := &Renewer{
		store: store,
		refresh: func(ctx context.Context, refreshToken string) (*pkgapi.TokenPair, error) {
			return nil, fmt.Errorf("connection refused")
		},
		onSessionExpired: func(ctx context.Context) { expired.Store(true) },
	}

	_, err := renewer.Renew(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrRenewalRejected)
	assert.NotErrorIs(t, err, ErrNoRefreshToken)

	// Сбой сети не означает конец сессии: токены могут быть еще годны
	assert.NotNil(t, store.current())
	assert.Zero(t, store.clearCalls)
	assert.False(t, expired.Load())
}

func TestRenewer_SaveFailureIsReturned(t *testing.T) {
	store := &mockStore{
		pair:   &pkgapi.TokenPair{AccessToken: "a", RefreshToken: "r"},
		setErr: fmt.Errorf("disk full"),
	}

	renewer := &Renewer{
		store: store,
		refresh: func(ctx context.Context, refreshToken string) (*pkgapi.TokenPair, error) {
			return &pkgapi.TokenPair{AccessToken: "na", RefreshToken: "nr"}, nil
		},
	}

	_, err := renewer.Renew(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to save renewed tokens")
}
