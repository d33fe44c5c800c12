package oracle

import (
	"context"
	"strconv"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"

	"github.com/argus-labs/warband/pkg/battle/types"
)

func redisDisabledKey() string {
	return "disabled:match_type"
}

func redisHolidaysKey() string {
	return "holiday:active"
}

// Redis is a Disabler and Holidays backed by two Redis sets. Lookups read a local copy that
// Refresh replaces, so the tick loop never waits on the network.
type Redis struct {
	client *redis.Client

	mu       sync.RWMutex
	disabled map[types.MatchTypeID]struct{}
	holidays map[types.HolidayID]struct{}
}

var (
	_ Disabler = (*Redis)(nil)
	_ Holidays = (*Redis)(nil)
)

// NewRedis creates an oracle over client. Call Refresh before the first lookup.
func NewRedis(client *redis.Client) *Redis {
	return &Redis{
		client:   client,
		disabled: make(map[types.MatchTypeID]struct{}),
		holidays: make(map[types.HolidayID]struct{}),
	}
}

// Refresh reloads both sets. On error the previous copy stays in place.
func (r *Redis) Refresh(ctx context.Context) error {
	disabled, err := readIDSet[types.MatchTypeID](ctx, r.client, redisDisabledKey())
	if err != nil {
		return eris.Wrap(err, "failed to read disabled match types")
	}
	holidays, err := readIDSet[types.HolidayID](ctx, r.client, redisHolidaysKey())
	if err != nil {
		return eris.Wrap(err, "failed to read active holidays")
	}

	r.mu.Lock()
	r.disabled = disabled
	r.holidays = holidays
	r.mu.Unlock()
	return nil
}

// Disable adds kinds to the disabled set. The local copy changes on the next Refresh.
func (r *Redis) Disable(ctx context.Context, ids ...types.MatchTypeID) error {
	if len(ids) == 0 {
		return nil
	}
	members := make([]any, len(ids))
	for i, id := range ids {
		members[i] = uint64(id)
	}
	return eris.Wrap(r.client.SAdd(ctx, redisDisabledKey(), members...).Err(), "")
}

// SetHoliday starts or stops an event. The local copy changes on the next Refresh.
func (r *Redis) SetHoliday(ctx context.Context, h types.HolidayID, active bool) error {
	if active {
		return eris.Wrap(r.client.SAdd(ctx, redisHolidaysKey(), uint64(h)).Err(), "")
	}
	return eris.Wrap(r.client.SRem(ctx, redisHolidaysKey(), uint64(h)).Err(), "")
}

func (r *Redis) IsDisabled(id types.MatchTypeID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.disabled[id]
	return ok
}

func (r *Redis) IsHolidayActive(h types.HolidayID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.holidays[h]
	return ok
}

func readIDSet[T ~uint32](ctx context.Context, client *redis.Client, key string) (map[T]struct{}, error) {
	members, err := client.SMembers(ctx, key).Result()
	if err != nil {
		return nil, eris.Wrap(err, "")
	}
	set := make(map[T]struct{}, len(members))
	for _, m := range members {
		id, err := strconv.ParseUint(m, 10, 32)
		if err != nil {
			return nil, eris.Wrapf(err, "member %q of %s is not an id", m, key)
		}
		set[T(id)] = struct{}{}
	}
	return set, nil
}
