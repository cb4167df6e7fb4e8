package redistags

import (
	"context"
	"fmt"

	domain "github.com/isw2-unileon/go-tdd-kata/domain/task"
	"github.com/redis/go-redis/v9"
)

var _ domain.TagRepository = (*Repository)(nil)

// addTagScript adds a member once, scored by a per-tag counter so that
// ZRANGE returns members in the order they were first added.
var addTagScript = redis.NewScript(`
	local key = KEYS[1]
	local counter_key = KEYS[2]
	local member = ARGV[1]

	if redis.call('ZSCORE', key, member) then
		return 0
	end

	local seq = redis.call('INCR', counter_key)
	redis.call('ZADD', key, seq, member)
	return 1
`)

// Repository stores tag associations in Redis sorted sets, one per tag.
type Repository struct {
	client redis.UniversalClient
	prefix string
}

// NewRepository creates a tag repository. Keys are namespaced by prefix.
func NewRepository(client redis.UniversalClient, prefix string) *Repository {
	return &Repository{
		client: client,
		prefix: prefix,
	}
}

func (r *Repository) key(tag string) string {
	return r.prefix + "tag:" + tag
}

// AddTag links taskID to tag. Adding an existing link is a no-op.
func (r *Repository) AddTag(ctx context.Context, taskID, tag string) error {
	key := r.key(tag)
	if err := addTagScript.Run(ctx, r.client, []string{key, key + ":seq"}, taskID).Err(); err != nil {
		return fmt.Errorf("failed to add tag %q: %w", tag, err)
	}
	return nil
}

// FindByTag returns the IDs tagged with tag in the order they were tagged.
func (r *Repository) FindByTag(ctx context.Context, tag string) ([]string, error) {
	ids, err := r.client.ZRange(ctx, r.key(tag), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to find tag %q: %w", tag, err)
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}
