package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/finbridge/portfolio_engine/config"
	"github.com/finbridge/portfolio_engine/internal/model"
	"github.com/finbridge/portfolio_engine/utils"
	"github.com/redis/go-redis/v9"
)

// RedisCache holds the quote snapshot backing one dashboard view. The TTL is
// the view lifetime; the valuation engine itself never caches.
type RedisCache struct {
	redis *redis.Client
	cfg   *config.Config
}

func NewRedisCache(redisClient *redis.Client, cfg *config.Config) *RedisCache {
	return &RedisCache{redis: redisClient, cfg: cfg}
}

func snapshotKey(userID string) string {
	return fmt.Sprintf("quotes:snapshot:%s", userID)
}

func (r *RedisCache) SetQuoteSnapshot(ctx context.Context, userID string, quotes []model.Quote) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	slog.Debug("SetQuoteSnapshot start", slog.String("rqID", rqID))

	quotesJson, err := json.Marshal(quotes)
	if err != nil {
		slog.Error(
			"can't marshall quotes in SetQuoteSnapshot",
			slog.String("rqID", rqID),
			slog.String("err", err.Error()),
		)
		return errors.New("can't marshall quotes")
	}

	_, err = r.redis.Set(ctx, snapshotKey(userID), quotesJson, r.cfg.Cache.SnapshotExpiration).Result()
	if err != nil {
		slog.Error("failed on redis.Set", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return err
	}

	slog.Debug("SetQuoteSnapshot completed", slog.String("rqID", rqID))

	return nil
}

func (r *RedisCache) GetQuoteSnapshot(ctx context.Context, userID string) ([]model.Quote, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	slog.Debug("GetQuoteSnapshot start", slog.String("rqID", rqID))

	res, err := r.redis.Get(ctx, snapshotKey(userID)).Result()
	if err != nil {
		return nil, err
	}

	var quotes []model.Quote
	err = json.Unmarshal([]byte(res), &quotes)
	if err != nil {
		slog.Error(
			"can't unmarshall quotes in GetQuoteSnapshot",
			slog.String("rqID", rqID),
			slog.String("err", err.Error()),
			slog.String("resultFromRedis", res),
		)
		return nil, errors.New("can't unmarshall quotes")
	}

	slog.Debug("GetQuoteSnapshot finished", slog.String("rqID", rqID))

	return quotes, nil
}
