package redis

import (
	"context"
	"strconv"
	"time"

	"codecrafter-quiz/internal/domain"
	"codecrafter-quiz/internal/visits"
	"github.com/redis/go-redis/v9"
)

// VisitLedger stores each visit document as a hash at its document path and
// tracks the visitors of a namespace in a set at the collection path.
//
//	HINCRBY {doc} visitCount 1
//	HSET    {doc} lastVisitAt {ts}
//	HSETNX  {doc} firstVisitAt {ts}
//	SADD    {collection} {userID}
type VisitLedger struct {
	client *redis.Client
}

func NewVisitLedger(client *redis.Client) *VisitLedger {
	return &VisitLedger{client: client}
}

func (l *VisitLedger) Upsert(ctx context.Context, appID, userID string, at time.Time) (domain.Visit, error) {
	doc := visits.DocumentPath(appID, userID)
	stamp := domain.FormatTimestamp(at)

	var all *redis.MapStringStringCmd
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HIncrBy(ctx, doc, "visitCount", 1)
		pipe.HSet(ctx, doc, "lastVisitAt", stamp)
		pipe.HSetNX(ctx, doc, "firstVisitAt", stamp)
		pipe.SAdd(ctx, visits.CollectionPath(appID), userID)
		all = pipe.HGetAll(ctx, doc)
		return nil
	})
	if err != nil {
		return domain.Visit{}, err
	}

	fields := all.Val()
	count, _ := strconv.ParseInt(fields["visitCount"], 10, 64)
	return domain.Visit{
		UserID:       userID,
		VisitCount:   count,
		FirstVisitAt: fields["firstVisitAt"],
		LastVisitAt:  fields["lastVisitAt"],
	}, nil
}

func (l *VisitLedger) CountVisitors(ctx context.Context, appID string) (int64, error) {
	return l.client.SCard(ctx, visits.CollectionPath(appID)).Result()
}
