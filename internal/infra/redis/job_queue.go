package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"telegram-media-publisher/internal/domain"
	"telegram-media-publisher/internal/domain/model"
	"telegram-media-publisher/internal/domain/ports/repository"
)

var _ repository.JobQueue = (*JobQueue)(nil)

// JobQueue is the durable FIFO channel between intake and worker, built on
// three keys: a pending list (RPUSH/LPOP), a lease zset scored by expiry
// unix time, and a token->payload hash for leased jobs. Pop, Complete and
// ReapExpired each run as a single Lua script so a crash between steps can
// never strand a payload.
type JobQueue struct {
	client   *Client
	key      string
	leaseTTL time.Duration
	now      func() time.Time
}

func NewJobQueue(client *Client, key string, leaseTTL time.Duration) *JobQueue {
	return &JobQueue{
		client:   client,
		key:      key,
		leaseTTL: leaseTTL,
		now:      time.Now,
	}
}

func (q *JobQueue) pendingKey() string { return q.key + ":pending" }
func (q *JobQueue) leasedKey() string  { return q.key + ":leased" }
func (q *JobQueue) payloadKey() string { return q.key + ":payload" }

// luaPop moves the queue head into the lease set under a fresh token.
var luaPop = redis.NewScript(`
local p = redis.call("LPOP", KEYS[1])
if not p then
	return false
end
redis.call("ZADD", KEYS[2], ARGV[2], ARGV[1])
redis.call("HSET", KEYS[3], ARGV[1], p)
return p`)

// luaComplete permanently removes a leased job.
var luaComplete = redis.NewScript(`
local removed = redis.call("ZREM", KEYS[1], ARGV[1])
redis.call("HDEL", KEYS[2], ARGV[1])
return removed`)

// luaReap pushes every expired leased payload back to the queue head so a
// recovered job runs before newer submissions.
var luaReap = redis.NewScript(`
local expired = redis.call("ZRANGEBYSCORE", KEYS[2], "-inf", ARGV[1])
local n = 0
for _, token in ipairs(expired) do
	local p = redis.call("HGET", KEYS[3], token)
	if p then
		redis.call("LPUSH", KEYS[1], p)
		n = n + 1
	end
	redis.call("ZREM", KEYS[2], token)
	redis.call("HDEL", KEYS[3], token)
end
return n`)

func (q *JobQueue) Push(ctx context.Context, job *model.MediaJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	return q.client.cli.RPush(ctx, q.pendingKey(), data).Err()
}

func (q *JobQueue) Pop(ctx context.Context) (*model.MediaJob, repository.Lease, error) {
	token := uuid.NewString()
	expiry := q.now().Add(q.leaseTTL).Unix()

	res, err := luaPop.Run(ctx, q.client.cli,
		[]string{q.pendingKey(), q.leasedKey(), q.payloadKey()},
		token, expiry).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, repository.Lease{}, domain.ErrQueueEmpty
		}
		return nil, repository.Lease{}, fmt.Errorf("pop job: %w", err)
	}

	payload, ok := res.(string)
	if !ok {
		return nil, repository.Lease{}, domain.ErrQueueEmpty
	}

	var job model.MediaJob
	if err := json.Unmarshal([]byte(payload), &job); err != nil {
		// Poison payload: the lease keeps it out of the queue until it
		// expires; drop it for good so it cannot wedge the worker.
		_, _ = luaComplete.Run(ctx, q.client.cli, []string{q.leasedKey(), q.payloadKey()}, token).Result()
		return nil, repository.Lease{}, fmt.Errorf("decode job payload: %w", err)
	}
	return &job, repository.Lease{Token: token}, nil
}

func (q *JobQueue) Complete(ctx context.Context, lease repository.Lease) error {
	if lease.Token == "" {
		return domain.ErrLeaseNotHeld
	}
	removed, err := luaComplete.Run(ctx, q.client.cli,
		[]string{q.leasedKey(), q.payloadKey()}, lease.Token).Int()
	if err != nil {
		return fmt.Errorf("complete lease: %w", err)
	}
	if removed == 0 {
		return domain.ErrLeaseNotHeld
	}
	return nil
}

func (q *JobQueue) ReapExpired(ctx context.Context) (int, error) {
	n, err := luaReap.Run(ctx, q.client.cli,
		[]string{q.pendingKey(), q.leasedKey(), q.payloadKey()},
		q.now().Unix()).Int()
	if err != nil {
		return 0, fmt.Errorf("reap expired leases: %w", err)
	}
	return n, nil
}

func (q *JobQueue) Size(ctx context.Context) (int64, error) {
	return q.client.cli.LLen(ctx, q.pendingKey()).Result()
}

func (q *JobQueue) Clear(ctx context.Context) error {
	return q.client.cli.Del(ctx, q.pendingKey(), q.leasedKey(), q.payloadKey()).Err()
}
