// File: internal/usecase/mocks_test.go
package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"telegram-media-publisher/internal/domain"
	"telegram-media-publisher/internal/domain/model"
	"telegram-media-publisher/internal/domain/ports/repository"
)

// memQueue is a small in-memory JobQueue used by unit tests. It mirrors the
// Redis implementation's contract: FIFO order, lease on pop, head re-queue
// on reap.
type memQueue struct {
	mu      sync.Mutex
	pending [][]byte
	leased  map[string][]byte // token -> payload
	expiry  map[string]time.Time
	ttl     time.Duration

	pushErr error // used by tests to simulate store failures
}

func newMemQueue() *memQueue {
	return &memQueue{
		leased: map[string][]byte{},
		expiry: map[string]time.Time{},
		ttl:    time.Minute,
	}
}

func (m *memQueue) Push(ctx context.Context, job *model.MediaJob) error {
	if m.pushErr != nil {
		return m.pushErr
	}
	data, err := json.Marshal(job)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = append(m.pending, data)
	return nil
}

func (m *memQueue) Pop(ctx context.Context) (*model.MediaJob, repository.Lease, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.pending) == 0 {
		return nil, repository.Lease{}, domain.ErrQueueEmpty
	}
	data := m.pending[0]
	m.pending = m.pending[1:]

	token := fmt.Sprintf("lease-%d", len(m.leased)+1)
	m.leased[token] = data
	m.expiry[token] = time.Now().Add(m.ttl)

	var job model.MediaJob
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, repository.Lease{}, err
	}
	return &job, repository.Lease{Token: token}, nil
}

func (m *memQueue) Complete(ctx context.Context, lease repository.Lease) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.leased[lease.Token]; !ok {
		return domain.ErrLeaseNotHeld
	}
	delete(m.leased, lease.Token)
	delete(m.expiry, lease.Token)
	return nil
}

func (m *memQueue) ReapExpired(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	now := time.Now()
	for token, deadline := range m.expiry {
		if deadline.After(now) {
			continue
		}
		m.pending = append([][]byte{m.leased[token]}, m.pending...)
		delete(m.leased, token)
		delete(m.expiry, token)
		n++
	}
	return n, nil
}

func (m *memQueue) Size(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.pending)), nil
}

func (m *memQueue) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = nil
	m.leased = map[string][]byte{}
	m.expiry = map[string]time.Time{}
	return nil
}

// expireAll force-expires every lease (test helper).
func (m *memQueue) expireAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for token := range m.expiry {
		m.expiry[token] = time.Now().Add(-time.Second)
	}
}

type memDestRepo struct {
	mu   sync.Mutex
	dest *model.Destination
}

func (m *memDestRepo) Set(ctx context.Context, dest model.Destination) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := dest
	m.dest = &cp
	return nil
}

func (m *memDestRepo) Get(ctx context.Context) (model.Destination, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.dest == nil {
		return model.Destination{}, domain.ErrNoDestination
	}
	return *m.dest, nil
}

type memArchive struct {
	mu   sync.Mutex
	rows []*model.Delivery
}

func (m *memArchive) Record(ctx context.Context, d *model.Delivery) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *d
	for i, row := range m.rows {
		if row.JobID == d.JobID {
			m.rows[i] = &cp
			return nil
		}
	}
	m.rows = append(m.rows, &cp)
	return nil
}

func (m *memArchive) Recent(ctx context.Context, limit int) ([]*model.Delivery, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.Delivery, 0, limit)
	for i := len(m.rows) - 1; i >= 0 && len(out) < limit; i-- {
		cp := *m.rows[i]
		out = append(out, &cp)
	}
	return out, nil
}
