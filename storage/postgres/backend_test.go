// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package postgres

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/poiesic/mosaic/storage"
)

func testConfig() Config {
	cfg := DefaultConfig("")
	cfg.MaxOpenConns = 4
	cfg.MaxIdleConns = 4
	cfg.AcquireTimeout = 2 * time.Second
	return cfg
}

func TestBackendValidateConfig(t *testing.T) {
	cfg := testConfig()
	cfg.MaxOpenConns = 0
	_, _, _, err := NewMemoryBackend(cfg)
	require.Error(t, err)

	cfg = testConfig()
	cfg.AcquireTimeout = 0
	_, _, _, err = NewMemoryBackend(cfg)
	require.Error(t, err)
}

func TestWithConnReleasesOnEveryPath(t *testing.T) {
	backend, _, _, err := NewMemoryBackend(testConfig())
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()
	opErr := errors.New("op failed")

	for i := 0; i < 50; i++ {
		switch i % 3 {
		case 0:
			err := backend.WithConn(ctx, func(conn *gorm.DB) error {
				return conn.Exec("SELECT 1").Error
			})
			require.NoError(t, err)
		case 1:
			err := backend.WithConn(ctx, func(conn *gorm.DB) error {
				return opErr
			})
			require.ErrorIs(t, err, opErr)
		case 2:
			func() {
				defer func() {
					require.NotNil(t, recover())
				}()
				_ = backend.WithConn(ctx, func(conn *gorm.DB) error {
					panic("boom")
				})
			}()
		}
	}

	stats := backend.Stats()
	assert.Equal(t, 0, stats.InUse, "all connections must be back in the pool")
}

func TestWithConnBoundedAcquisition(t *testing.T) {
	cfg := testConfig()
	cfg.MaxOpenConns = 2
	cfg.MaxIdleConns = 2
	cfg.AcquireTimeout = 200 * time.Millisecond

	backend, _, _, err := NewMemoryBackend(cfg)
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()
	hold := make(chan struct{})
	started := make(chan struct{}, 2)

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = backend.WithConn(ctx, func(conn *gorm.DB) error {
				started <- struct{}{}
				<-hold
				return nil
			})
		}()
	}
	<-started
	<-started

	// Both pooled connections are held; the third caller must fail within
	// the acquire timeout rather than wait indefinitely.
	begin := time.Now()
	err = backend.WithConn(ctx, func(conn *gorm.DB) error { return nil })
	elapsed := time.Since(begin)

	require.Error(t, err)
	assert.ErrorIs(t, err, storage.ErrPoolExhausted)
	var connErr *storage.ConnectionError
	assert.ErrorAs(t, err, &connErr)
	assert.Less(t, elapsed, 2*time.Second)

	stats := backend.Stats()
	assert.LessOrEqual(t, stats.InUse, 2, "pool must never exceed its bound")

	close(hold)
	wg.Wait()
}

func TestWithConnCallerCancellation(t *testing.T) {
	cfg := testConfig()
	cfg.MaxOpenConns = 1
	cfg.MaxIdleConns = 1

	backend, _, _, err := NewMemoryBackend(cfg)
	require.NoError(t, err)
	defer backend.Close()

	hold := make(chan struct{})
	started := make(chan struct{})
	go func() {
		_ = backend.WithConn(context.Background(), func(conn *gorm.DB) error {
			close(started)
			<-hold
			return nil
		})
	}()
	<-started

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = backend.WithConn(ctx, func(conn *gorm.DB) error { return nil })
	require.Error(t, err)
	assert.NotErrorIs(t, err, storage.ErrPoolExhausted,
		"caller cancellation is not pool exhaustion")

	close(hold)
}

func TestWithConnAfterClose(t *testing.T) {
	backend, _, _, err := NewMemoryBackend(testConfig())
	require.NoError(t, err)
	require.NoError(t, backend.Close())

	err = backend.WithConn(context.Background(), func(conn *gorm.DB) error { return nil })
	assert.ErrorIs(t, err, storage.ErrStorageClosed)

	// Idempotent.
	require.NoError(t, backend.Close())
}

func TestWithTxRollsBackOnError(t *testing.T) {
	backend, docRepo, _, err := NewMemoryBackend(testConfig())
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()
	doc := newTestDocument("alice", "uploads/tx.txt")
	stored, err := docRepo.Create(ctx, doc)
	require.NoError(t, err)

	failure := errors.New("midway failure")
	err = backend.WithTx(ctx, func(tx *gorm.DB) error {
		res := tx.Model(&documentRow{}).Where("id = ?", stored.ID).
			Update("status", "completed")
		if res.Error != nil {
			return res.Error
		}
		return failure
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, storage.ErrTransactionFailed)
	assert.ErrorIs(t, err, failure)

	got, err := docRepo.Get(ctx, stored.ID)
	require.NoError(t, err)
	assert.Equal(t, stored.Status, got.Status, "rolled-back update must not be visible")
}

func TestWithTxCommitsOnSuccess(t *testing.T) {
	backend, _, _, err := NewMemoryBackend(testConfig())
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()
	err = backend.WithTx(ctx, func(tx *gorm.DB) error {
		row := documentRow{
			ID:         uuid.New(),
			UserID:     "bob",
			SourcePath: fmt.Sprintf("uploads/commit-%d.txt", time.Now().UnixNano()),
			Status:     "pending",
			CreatedAt:  time.Now().UTC(),
		}
		return tx.Create(&row).Error
	})
	require.NoError(t, err)

	var count int64
	err = backend.WithConn(ctx, func(conn *gorm.DB) error {
		return conn.Model(&documentRow{}).Where("user_id = ?", "bob").Count(&count).Error
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
