package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/jaehyuk-lee/infinite_buying_bot/config"
	"github.com/jaehyuk-lee/infinite_buying_bot/internal/model"
	"github.com/jaehyuk-lee/infinite_buying_bot/utils"
)

var ErrNotFound = errors.New("error not found in cache")

type RedisCache struct {
	redis *redis.Client
	cfg   *config.Config
}

func NewRedisCache(redisClient *redis.Client, cfg *config.Config) *RedisCache {
	return &RedisCache{redis: redisClient, cfg: cfg}
}

func portfolioKey(portfolioID int64) string {
	return fmt.Sprintf("portfolio:%d", portfolioID)
}

func (r *RedisCache) GetPortfolioDetails(ctx context.Context, portfolioID int64) (model.PortfolioDetails, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	slog.Debug("GetPortfolioDetails start", slog.String("rqID", rqID), slog.Int64("portfolioID", portfolioID))

	res, err := r.redis.Get(ctx, portfolioKey(portfolioID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return model.PortfolioDetails{}, ErrNotFound
		}
		slog.Error("failed on redis.Get", slog.String("rqID", rqID), slog.String("err", err.Error()), slog.Int64("portfolioID", portfolioID))
		return model.PortfolioDetails{}, err
	}

	details := model.PortfolioDetails{}
	err = json.Unmarshal([]byte(res), &details)
	if err != nil {
		slog.Error(
			"can't unmarshal portfolio details in GetPortfolioDetails",
			slog.String("rqID", rqID),
			slog.String("err", err.Error()),
			slog.String("resultFromRedis", res),
		)
		return model.PortfolioDetails{}, errors.New("can't unmarshal portfolio details")
	}

	slog.Debug("GetPortfolioDetails finished", slog.String("rqID", rqID))

	return details, nil
}

func (r *RedisCache) SetPortfolioDetails(ctx context.Context, portfolioID int64, details model.PortfolioDetails) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	slog.Debug("SetPortfolioDetails start", slog.String("rqID", rqID), slog.Int64("portfolioID", portfolioID))

	detailsJson, err := json.Marshal(details)
	if err != nil {
		slog.Error(
			"can't marshal portfolio details in SetPortfolioDetails",
			slog.String("rqID", rqID),
			slog.String("err", err.Error()),
			slog.Int64("portfolioID", portfolioID),
		)
		return errors.New("can't marshal portfolio details")
	}

	_, err = r.redis.Set(ctx, portfolioKey(portfolioID), detailsJson, r.cfg.Cache.PortfolioExpiration).Result()
	if err != nil {
		slog.Error("failed on redis.Set", slog.String("rqID", rqID), slog.String("err", err.Error()), slog.Int64("portfolioID", portfolioID))
		return err
	}

	slog.Debug("SetPortfolioDetails completed", slog.String("rqID", rqID))

	return nil
}

// FlushPortfolio drops the cached snapshot. Called synchronously after every
// mutation so a stale snapshot can't be read back before the delete lands.
func (r *RedisCache) FlushPortfolio(ctx context.Context, portfolioID int64) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	slog.Debug("FlushPortfolio start", slog.String("rqID", rqID), slog.Int64("portfolioID", portfolioID))

	_, err := r.redis.Del(ctx, portfolioKey(portfolioID)).Result()
	if err != nil {
		slog.Error("failed on redis.Del", slog.String("rqID", rqID), slog.String("err", err.Error()), slog.Int64("portfolioID", portfolioID))
		return err
	}

	slog.Debug("FlushPortfolio completed", slog.String("rqID", rqID))

	return nil
}
