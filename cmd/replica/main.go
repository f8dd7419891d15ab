// Command replica follows the resolutions the server publishes for one game and applies
// them to a local board, logging each turn. Started late, it picks up the board from the
// first resolution it receives.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/benbeisheim/predictchess-backend/internal/config"
	"github.com/benbeisheim/predictchess-backend/internal/logger"
	"github.com/benbeisheim/predictchess-backend/internal/model"
	"github.com/benbeisheim/predictchess-backend/internal/service"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogJSON)
	defer logger.Sync()

	if len(os.Args) != 2 {
		logger.Fatal("usage: replica <game-id>")
	}
	gameID := os.Args[1]
	if cfg.RedisAddr == "" {
		logger.Fatal("REDIS_ADDR is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	publisher := service.NewRedisPublisher(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	defer publisher.Close()

	logger.Info("following game", zap.String("game", gameID), zap.String("channel", service.TurnChannel(gameID)))
	err := publisher.Follow(ctx, gameID, model.NewBoard(), func(board *model.Board) {
		logger.Info("applied turn",
			zap.String("game", gameID),
			zap.Int("nextTurn", board.Turn),
			zap.Int("white", len(board.OfColor(model.White))),
			zap.Int("black", len(board.OfColor(model.Black))))
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal("replica stopped", zap.Error(err))
	}
}
