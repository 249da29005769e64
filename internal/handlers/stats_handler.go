package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"alfredoptarigan/resumeai/internal/models"
	"alfredoptarigan/resumeai/internal/repositories"
)

type StatsHandler struct {
	runs repositories.DemoRunRepository
}

func NewStatsHandler(runs repositories.DemoRunRepository) *StatsHandler {
	return &StatsHandler{runs: runs}
}

// HandleStats handles GET /demo/stats
func (h *StatsHandler) HandleStats(c *fiber.Ctx) error {
	counts, err := h.runs.CountByStatus(c.UserContext())
	if err != nil {
		zap.S().Named("handlers").Errorw("failed to count demo runs", "error", err)
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to load demo statistics")
	}

	return c.JSON(models.StatsResponse{
		Processing: counts[models.RunStatusProcessing],
		Completed:  counts[models.RunStatusCompleted],
		Abandoned:  counts[models.RunStatusAbandoned],
	})
}
