package controller

import (
	"errors"

	"note-editor-be/internal/dto"
	"note-editor-be/internal/pkg/serverutils"
	"note-editor-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IEnrichmentController interface {
	RegisterRoutes(r fiber.Router)
	Panel(ctx *fiber.Ctx) error
	SwitchOperation(ctx *fiber.Ctx) error
	Run(ctx *fiber.Ctx) error
}

type enrichmentController struct {
	enrichmentService service.IEnrichmentService
}

func NewEnrichmentController(enrichmentService service.IEnrichmentService) IEnrichmentController {
	return &enrichmentController{
		enrichmentService: enrichmentService,
	}
}

func (c *enrichmentController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/enrichment/v1")
	h.Get("panel", c.Panel)
	h.Put("operation", c.SwitchOperation)
	h.Post("run", c.Run)
}

func (c *enrichmentController) Panel(ctx *fiber.Ctx) error {
	panel := c.enrichmentService.Panel()

	res := dto.PanelResponse{
		DocumentId: panel.DocumentId,
		Operation:  panel.Operation,
		Status:     string(panel.Status),
		Content:    panel.Content,
		Message:    panel.Message,
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get panel", res))
}

func (c *enrichmentController) SwitchOperation(ctx *fiber.Ctx) error {
	var req dto.SwitchOperationRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.enrichmentService.SwitchOperation(ctx.Context(), req.Operation); err != nil {
		return mapEnrichmentError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success switch operation", nil))
}

func (c *enrichmentController) Run(ctx *fiber.Ctx) error {
	if err := c.enrichmentService.Run(ctx.Context()); err != nil {
		return mapEnrichmentError(err)
	}

	// Submission accepted (or served from cache); the caller polls the
	// panel endpoint for the outcome.
	panel := c.enrichmentService.Panel()
	res := dto.PanelResponse{
		DocumentId: panel.DocumentId,
		Operation:  panel.Operation,
		Status:     string(panel.Status),
		Content:    panel.Content,
		Message:    panel.Message,
	}
	return ctx.JSON(serverutils.SuccessResponse("Success run enrichment", res))
}

func mapEnrichmentError(err error) error {
	switch {
	case errors.Is(err, service.ErrNoOperationSelected),
		errors.Is(err, service.ErrUnknownOperation),
		errors.Is(err, service.ErrEmptyContent),
		errors.Is(err, service.ErrNoActiveDoc):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrMissingCredential):
		return fiber.NewError(fiber.StatusPreconditionRequired, err.Error())
	default:
		return err
	}
}
