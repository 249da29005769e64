package handlers

import (
	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"alfredoptarigan/resumeai/internal/models"
	"alfredoptarigan/resumeai/internal/services"
	"alfredoptarigan/resumeai/internal/wizard"
)

// resumeField is the multipart field carrying the resume upload.
const resumeField = "resume"

type DemoHandler struct {
	sessions  services.SessionManager
	inspector services.DocumentInspector
	metrics   *services.Metrics
	validate  *validator.Validate
	log       *zap.SugaredLogger
}

// NewDemoHandler serves the hosted wizard sessions. metrics may be nil.
func NewDemoHandler(
	sessions services.SessionManager,
	inspector services.DocumentInspector,
	metrics *services.Metrics,
	validate *validator.Validate,
) *DemoHandler {
	return &DemoHandler{
		sessions:  sessions,
		inspector: inspector,
		metrics:   metrics,
		validate:  validate,
		log:       zap.S().Named("handlers"),
	}
}

// HandleCreateSession handles POST /demo/sessions
func (h *DemoHandler) HandleCreateSession(c *fiber.Ctx) error {
	s, err := h.sessions.Create()
	if err != nil {
		if errors.Is(err, services.ErrTooManySessions) {
			return fiber.NewError(fiber.StatusServiceUnavailable, "Too many active demo sessions, try again later")
		}
		h.log.Errorw("failed to create session", "error", err)
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to create demo session")
	}

	return c.Status(fiber.StatusCreated).JSON(models.SessionResponse{
		ID:    s.ID.String(),
		State: models.NewWizardState(s.Controller.Snapshot()),
	})
}

// HandleGetSession handles GET /demo/sessions/:id
func (h *DemoHandler) HandleGetSession(c *fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return err
	}

	return c.JSON(models.SessionResponse{
		ID:    s.ID.String(),
		State: models.NewWizardState(s.Controller.Snapshot()),
	})
}

// HandleDeleteSession handles DELETE /demo/sessions/:id
func (h *DemoHandler) HandleDeleteSession(c *fiber.Ctx) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}

	if err := h.sessions.Delete(id); err != nil {
		return fiber.NewError(fiber.StatusNotFound, "Session not found")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleSubmitDocument handles POST /demo/sessions/:id/document
//
// An upload the file filter rejects is not an HTTP error: the wizard simply
// does not react, so the response reports applied=false.
func (h *DemoHandler) HandleSubmitDocument(c *fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return err
	}

	form, err := c.MultipartForm()
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Failed to parse multipart form")
	}

	doc, err := h.inspector.Inspect(form.File[resumeField])
	if err != nil {
		if !errors.Is(err, services.ErrDocumentRejected) {
			h.log.Errorw("failed to inspect upload", "session", s.ID, "error", err)
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to read uploaded file")
		}
		h.log.Debugw("upload ignored", "session", s.ID, "reason", err)
		if h.metrics != nil {
			h.metrics.DocumentsRejected.Inc()
		}
		return h.respond(c, s, false)
	}

	return h.respond(c, s, s.Controller.SubmitDocument(doc))
}

// HandleUpdateJobDescription handles PUT /demo/sessions/:id/job-description
func (h *DemoHandler) HandleUpdateJobDescription(c *fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return err
	}

	var req models.JobDescriptionRequest
	if err := h.parse(c, &req); err != nil {
		return err
	}

	return h.respond(c, s, s.Controller.UpdateJobText(req.Text))
}

// HandleStartProcessing handles POST /demo/sessions/:id/process
func (h *DemoHandler) HandleStartProcessing(c *fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return err
	}
	return h.respond(c, s, s.Controller.StartProcessing())
}

// HandleSelectStage handles POST /demo/sessions/:id/stage
func (h *DemoHandler) HandleSelectStage(c *fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return err
	}

	var req models.SelectStageRequest
	if err := h.parse(c, &req); err != nil {
		return err
	}
	stage, err := wizard.ParseStage(req.Stage)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	return h.respond(c, s, s.Controller.SelectStage(stage))
}

// HandleReset handles POST /demo/sessions/:id/reset
func (h *DemoHandler) HandleReset(c *fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return err
	}
	s.Controller.Reset()
	return h.respond(c, s, true)
}

func (h *DemoHandler) session(c *fiber.Ctx) (*services.Session, error) {
	id, err := sessionID(c)
	if err != nil {
		return nil, err
	}

	s, err := h.sessions.Get(id)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "Session not found")
	}
	return s, nil
}

func (h *DemoHandler) parse(c *fiber.Ctx, req any) error {
	if err := c.BodyParser(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request payload")
	}
	if err := h.validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, validationMessage(err))
	}
	return nil
}

func (h *DemoHandler) respond(c *fiber.Ctx, s *services.Session, applied bool) error {
	return c.JSON(models.OperationResponse{
		Applied: applied,
		State:   models.NewWizardState(s.Controller.Snapshot()),
	})
}

func sessionID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "Invalid session ID format")
	}
	return id, nil
}
