package controller

import (
	"errors"

	"github.com/benbeisheim/predictchess-backend/internal/logger"
	"github.com/benbeisheim/predictchess-backend/internal/middleware"
	"github.com/benbeisheim/predictchess-backend/internal/model"
	"github.com/benbeisheim/predictchess-backend/internal/service"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type GameController struct {
	gameService *service.GameService
}

func NewGameController(gameService *service.GameService) *GameController {
	return &GameController{gameService: gameService}
}

// Register mounts the game routes on router.
func (gc *GameController) Register(router fiber.Router) {
	router.Post("/matchmaking/join", gc.JoinMatchmaking)
	router.Post("/matchmaking/leave", gc.LeaveMatchmaking)
	router.Post("/create", gc.CreateGame)
	router.Post("/join/:gameId", gc.JoinGame)
	router.Get("/:gameId", gc.GetGameState)
	router.Post("/:gameId/commit", gc.Commit)
	router.Post("/:gameId/move", gc.SetMove)
	router.Post("/:gameId/prediction", gc.SetPrediction)
	router.Post("/:gameId/reset", gc.ResetTurn)
	router.Post("/:gameId/ready", gc.SetReady)
	router.Post("/:gameId/resign", gc.Resign)
}

func (gc *GameController) CreateGame(c *fiber.Ctx) error {
	gameID, err := gc.gameService.CreateGame()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Game created",
		"game_id": gameID,
	})
}

func (gc *GameController) JoinGame(c *fiber.Ctx) error {
	color, err := gc.gameService.JoinGame(c.Params("gameId"), middleware.PlayerID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Game joined",
		"color":   color,
	})
}

func (gc *GameController) GetGameState(c *fiber.Ctx) error {
	state, err := gc.gameService.GetGameState(c.Params("gameId"), middleware.PlayerID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(state)
}

func (gc *GameController) JoinMatchmaking(c *fiber.Ctx) error {
	if err := gc.gameService.JoinMatchmaking(middleware.PlayerID(c)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"status": "queued",
	})
}

func (gc *GameController) LeaveMatchmaking(c *fiber.Ctx) error {
	if err := gc.gameService.LeaveMatchmaking(middleware.PlayerID(c)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"status": "left",
	})
}

func (gc *GameController) Commit(c *fiber.Ctx) error {
	return gc.withCommit(c, gc.gameService.Commit)
}

func (gc *GameController) SetMove(c *fiber.Ctx) error {
	return gc.withCommit(c, gc.gameService.SetMove)
}

func (gc *GameController) SetPrediction(c *fiber.Ctx) error {
	return gc.withCommit(c, gc.gameService.SetPrediction)
}

func (gc *GameController) withCommit(c *fiber.Ctx, apply func(gameID, playerID string, commit model.WSCommit) error) error {
	var commit model.WSCommit
	if err := c.BodyParser(&commit); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid commit payload",
		})
	}
	gameID, playerID := c.Params("gameId"), middleware.PlayerID(c)
	if err := apply(gameID, playerID, commit); err != nil {
		return respondError(c, err)
	}
	return gc.GetGameState(c)
}

func (gc *GameController) ResetTurn(c *fiber.Ctx) error {
	if err := gc.gameService.ResetTurn(c.Params("gameId"), middleware.PlayerID(c)); err != nil {
		return respondError(c, err)
	}
	return gc.GetGameState(c)
}

func (gc *GameController) SetReady(c *fiber.Ctx) error {
	var req model.WSReady
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid ready payload",
		})
	}

	check, res, err := gc.gameService.SetReady(c.UserContext(), c.Params("gameId"), middleware.PlayerID(c), req.Ready)
	if errors.Is(err, model.ErrIllegalCommitment) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error":     err.Error(),
			"turnCheck": check,
		})
	}
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"turnCheck":  check,
		"resolution": res,
	})
}

func (gc *GameController) Resign(c *fiber.Ctx) error {
	if err := gc.gameService.Resign(c.Params("gameId"), middleware.PlayerID(c)); err != nil {
		return respondError(c, err)
	}
	return gc.GetGameState(c)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrGameNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, service.ErrGameExists),
		errors.Is(err, model.ErrGameFull),
		errors.Is(err, model.ErrAlreadyQueued),
		errors.Is(err, model.ErrPlayerReady),
		errors.Is(err, model.ErrGameOver):
		return fiber.StatusConflict
	case errors.Is(err, model.ErrPlayerNotFound),
		errors.Is(err, model.ErrNotYourPiece):
		return fiber.StatusForbidden
	case errors.Is(err, model.ErrIllegalCommitment):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, service.ErrNotMatchmaking), model.IsUserError(err):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

func respondError(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	if status == fiber.StatusInternalServerError {
		logger.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
	}
	return c.Status(status).JSON(fiber.Map{
		"error": err.Error(),
	})
}
