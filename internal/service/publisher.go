package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/benbeisheim/predictchess-backend/internal/logger"
	"github.com/benbeisheim/predictchess-backend/internal/model"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ResultPublisher ships each resolution so other nodes can apply it verbatim with
// model.ApplyResolution instead of recomputing it.
type ResultPublisher interface {
	Publish(ctx context.Context, gameID string, res model.Resolution) error
}

type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, model.Resolution) error { return nil }

type RedisPublisher struct {
	client *redis.Client
}

func NewRedisPublisher(addr, password string, db int) *RedisPublisher {
	return &RedisPublisher{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
	}
}

func TurnChannel(gameID string) string {
	return fmt.Sprintf("predictchess:game:%s:turns", gameID)
}

func (p *RedisPublisher) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

func (p *RedisPublisher) Publish(ctx context.Context, gameID string, res model.Resolution) error {
	payload, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("marshal resolution: %w", err)
	}
	if err := p.client.Publish(ctx, TurnChannel(gameID), payload).Err(); err != nil {
		return fmt.Errorf("publish turn %d of %s: %w", res.Turn, gameID, err)
	}
	return nil
}

// Follow applies every resolution published for gameID onto board, calling onApply with
// each new board, until ctx is done. If the first resolution received is not for
// board's turn, the replica joined late and is seeded from that resolution's board.
func (p *RedisPublisher) Follow(ctx context.Context, gameID string, board *model.Board, onApply func(*model.Board)) error {
	sub := p.client.Subscribe(ctx, TurnChannel(gameID))
	defer sub.Close()

	ch := sub.Channel()
	first := true
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			next, err := applyPayload(board, []byte(msg.Payload), first)
			if err != nil {
				return err
			}
			first = false
			board = next
			onApply(board)
		}
	}
}

func applyPayload(board *model.Board, payload []byte, seed bool) (*model.Board, error) {
	var res model.Resolution
	if err := json.Unmarshal(payload, &res); err != nil {
		return nil, fmt.Errorf("decode resolution: %w", err)
	}
	if seed && (board == nil || board.Turn != res.Turn) {
		if res.Board == nil || res.Board.Turn != res.Turn+1 {
			return nil, fmt.Errorf("seed replica from turn %d: %w", res.Turn, model.ErrInvariantViolation)
		}
		logger.Info("replica seeded from published board", zap.Int("turn", res.Turn))
		return res.Board, nil
	}
	return model.ApplyResolution(board, res)
}

func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
