// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"encoding/json"
	"math/rand"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/orderdesk/internal/storage"
)

func newTestManager(t *testing.T) (*Manager, *storage.Store) {
	t.Helper()
	store, err := storage.Open("file", t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return NewManager(store, nil), store
}

var bob = Profile{Username: "bob", Role: RoleUser}
var alice = Profile{Username: "alice", Role: RoleAdmin}

// =============================================================================
// TRANSITIONS
// =============================================================================

func TestManager_StartsSignedOut(t *testing.T) {
	m, _ := newTestManager(t)
	require.NoError(t, m.Init())

	assert.False(t, m.IsAuthenticated())
	assert.False(t, m.IsAdmin())
	_, ok := m.CurrentProfile()
	assert.False(t, ok)
	assert.Empty(t, m.Token())
}

func TestManager_CommitUser(t *testing.T) {
	m, _ := newTestManager(t)
	require.NoError(t, m.Commit("tok1", bob))

	assert.True(t, m.IsAuthenticated())
	assert.False(t, m.IsAdmin())
	p, ok := m.CurrentProfile()
	require.True(t, ok)
	assert.Equal(t, "bob", p.Username)
	assert.Equal(t, "tok1", m.Token())
}

func TestManager_CommitAdmin(t *testing.T) {
	m, _ := newTestManager(t)
	require.NoError(t, m.Commit("tok2", alice))
	assert.True(t, m.IsAdmin())
}

func TestManager_CommitRejectsIncompleteInput(t *testing.T) {
	m, _ := newTestManager(t)
	assert.ErrorIs(t, m.Commit("", bob), ErrEmptyToken)
	assert.ErrorIs(t, m.Commit("tok", Profile{}), ErrInvalidProfile)
	assert.False(t, m.IsAuthenticated(), "rejected commit leaves nothing behind")
}

func TestManager_ClearIsIdempotent(t *testing.T) {
	m, _ := newTestManager(t)
	require.NoError(t, m.Commit("tok1", bob))

	ended, err := m.Clear()
	require.NoError(t, err)
	assert.True(t, ended)

	ended, err = m.Clear()
	require.NoError(t, err)
	assert.False(t, ended, "second clear ends nothing")

	assert.False(t, m.IsAuthenticated())
	assert.False(t, m.IsAdmin())
}

func TestManager_ClearRemovesCart(t *testing.T) {
	m, store := newTestManager(t)
	require.NoError(t, m.Commit("tok1", bob))
	_, err := store.AddToCart(storage.CartItem{InventoryID: 3, Quantity: 1})
	require.NoError(t, err)

	_, err = m.Clear()
	require.NoError(t, err)
	cart, err := store.Cart()
	require.NoError(t, err)
	assert.Empty(t, cart)
}

// For any sequence of commits and clears, IsAuthenticated equals "the last
// call was a commit", and IsAdmin implies IsAuthenticated.
func TestManager_RandomSequences(t *testing.T) {
	m, _ := newTestManager(t)
	rng := rand.New(rand.NewSource(42))

	lastWasCommit := false
	for i := 0; i < 200; i++ {
		switch rng.Intn(3) {
		case 0:
			require.NoError(t, m.Commit("tok", bob))
			lastWasCommit = true
		case 1:
			require.NoError(t, m.Commit("tok-admin", alice))
			lastWasCommit = true
		default:
			_, err := m.Clear()
			require.NoError(t, err)
			lastWasCommit = false
		}
		require.Equal(t, lastWasCommit, m.IsAuthenticated(), "step %d", i)
		if !m.IsAuthenticated() {
			require.False(t, m.IsAdmin(), "step %d", i)
		}
	}
}

func TestManager_ConcurrentClearEndsOnce(t *testing.T) {
	m, _ := newTestManager(t)
	require.NoError(t, m.Commit("tok1", bob))

	var ended int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := m.Clear()
			assert.NoError(t, err)
			if ok {
				atomic.AddInt32(&ended, 1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), ended)
}

// =============================================================================
// STARTUP REPAIR
// =============================================================================

func TestManager_InitRestoresConsistentSession(t *testing.T) {
	m, store := newTestManager(t)
	raw, _ := json.Marshal(alice)
	require.NoError(t, store.SaveCredentials(storage.Credentials{Token: "persisted", User: string(raw)}))

	require.NoError(t, m.Init())
	assert.True(t, m.IsAuthenticated())
	assert.True(t, m.IsAdmin())
}

func TestManager_InitRepairsInconsistentState(t *testing.T) {
	tests := []struct {
		name  string
		creds storage.Credentials
	}{
		{"token without profile", storage.Credentials{Token: "tok"}},
		{"profile without token", storage.Credentials{User: `{"username":"bob"}`}},
		{"unreadable profile", storage.Credentials{Token: "tok", User: "not json"}},
		{"profile without username", storage.Credentials{Token: "tok", User: `{"isAdmin":true}`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, store := newTestManager(t)
			require.NoError(t, store.SaveCredentials(tt.creds))

			require.NoError(t, m.Init())
			creds, err := store.Credentials()
			require.NoError(t, err)
			assert.Equal(t, storage.Credentials{}, creds)
			assert.False(t, m.IsAuthenticated())
		})
	}
}

func TestManager_SeesExternalLogout(t *testing.T) {
	dir := t.TempDir()
	s1, err := storage.Open("file", dir)
	require.NoError(t, err)
	defer s1.Close()
	s2, err := storage.Open("file", dir)
	require.NoError(t, err)
	defer s2.Close()

	m := NewManager(s1, nil)
	require.NoError(t, m.Commit("tok", bob))

	other := NewManager(s2, nil)
	_, err = other.Clear()
	require.NoError(t, err)

	assert.False(t, m.IsAuthenticated())
}

// =============================================================================
// PROFILE ENCODING
// =============================================================================

func TestProfile_AdminFlagMapping(t *testing.T) {
	var p Profile
	require.NoError(t, json.Unmarshal([]byte(`{"username":"x","isAdmin":true}`), &p))
	assert.Equal(t, RoleAdmin, p.Role)

	require.NoError(t, json.Unmarshal([]byte(`{"username":"x"}`), &p))
	assert.Equal(t, RoleUser, p.Role)

	assert.Error(t, json.Unmarshal([]byte(`{"username":"x","isAdmin":"true"}`), &p),
		"only a boolean true grants admin")

	data, err := json.Marshal(alice)
	require.NoError(t, err)
	assert.JSONEq(t, `{"username":"alice","isAdmin":true}`, string(data))
}

func TestRole_String(t *testing.T) {
	assert.Equal(t, "admin", RoleAdmin.String())
	assert.Equal(t, "user", RoleUser.String())
	assert.Equal(t, RoleAdmin, RoleFromAdminFlag(true))
}
