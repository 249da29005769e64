package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/resumeai/internal/models"
	"alfredoptarigan/resumeai/internal/wizard"
)

// KeywordsHandler runs keyword detection without a session, for previews.
type KeywordsHandler struct {
	matcher  *wizard.Matcher
	validate *validator.Validate
}

func NewKeywordsHandler(matcher *wizard.Matcher, validate *validator.Validate) *KeywordsHandler {
	return &KeywordsHandler{
		matcher:  matcher,
		validate: validate,
	}
}

// HandleDetect handles POST /demo/keywords
func (h *KeywordsHandler) HandleDetect(c *fiber.Ctx) error {
	var req models.KeywordsRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request payload")
	}
	if err := h.validate.Struct(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, validationMessage(err))
	}

	segments := h.matcher.Highlight(req.Text)
	if segments == nil {
		segments = []wizard.Segment{}
	}
	return c.JSON(models.KeywordsResponse{
		Keywords: h.matcher.Detect(req.Text),
		Segments: segments,
	})
}
