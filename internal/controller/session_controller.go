package controller

import (
	"errors"
	"strconv"

	"note-editor-be/internal/dto"
	"note-editor-be/internal/entity"
	"note-editor-be/internal/pkg/serverutils"
	"note-editor-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ISessionController interface {
	RegisterRoutes(r fiber.Router)
	State(ctx *fiber.Ctx) error
	CreateDocument(ctx *fiber.Ctx) error
	SwitchDocument(ctx *fiber.Ctx) error
	CloseDocument(ctx *fiber.Ctx) error
	RenameDocument(ctx *fiber.Ctx) error
	ContentChanged(ctx *fiber.Ctx) error
	Undo(ctx *fiber.Ctx) error
	Redo(ctx *fiber.Ctx) error
}

type sessionController struct {
	sessionService service.ISessionService
}

func NewSessionController(sessionService service.ISessionService) ISessionController {
	return &sessionController{
		sessionService: sessionService,
	}
}

func (c *sessionController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/session/v1")
	h.Get("", c.State)
	h.Post("documents", c.CreateDocument)
	h.Put("documents/active", c.SwitchDocument)
	h.Delete("documents/:index", c.CloseDocument)
	h.Put("documents/:index/title", c.RenameDocument)
	h.Put("content", c.ContentChanged)
	h.Post("undo", c.Undo)
	h.Post("redo", c.Redo)
}

func (c *sessionController) State(ctx *fiber.Ctx) error {
	state, content, err := c.sessionService.State(ctx.Context())
	if err != nil {
		return err
	}

	res := dto.SessionStateResponse{
		Documents:     toDocumentResponses(state.Documents),
		ActiveIndex:   state.ActiveIndex,
		ActiveContent: content,
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get session state", res))
}

func (c *sessionController) CreateDocument(ctx *fiber.Ctx) error {
	doc, err := c.sessionService.CreateDocument(ctx.Context())
	if err != nil {
		return err
	}

	res := dto.CreateDocumentResponse{
		Id:    doc.Id,
		Title: doc.Title,
	}
	return ctx.JSON(serverutils.SuccessResponse("Success create document", res))
}

func (c *sessionController) SwitchDocument(ctx *fiber.Ctx) error {
	var req dto.SwitchDocumentRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.sessionService.SwitchTo(ctx.Context(), *req.Index); err != nil {
		return mapSessionError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success switch document", nil))
}

func (c *sessionController) CloseDocument(ctx *fiber.Ctx) error {
	index, err := strconv.Atoi(ctx.Params("index"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid document index")
	}

	if err := c.sessionService.CloseDocument(ctx.Context(), index); err != nil {
		return mapSessionError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success close document", nil))
}

func (c *sessionController) RenameDocument(ctx *fiber.Ctx) error {
	index, err := strconv.Atoi(ctx.Params("index"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid document index")
	}

	var req dto.RenameDocumentRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	req.Index = index

	if err := c.sessionService.RenameDocument(ctx.Context(), req.Index, req.Title); err != nil {
		return mapSessionError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success rename document", nil))
}

func (c *sessionController) ContentChanged(ctx *fiber.Ctx) error {
	var req dto.ContentChangedRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := c.sessionService.ContentChanged(ctx.Context(), req.Content); err != nil {
		return mapSessionError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success record content", nil))
}

func (c *sessionController) Undo(ctx *fiber.Ctx) error {
	content, applied, err := c.sessionService.Undo(ctx.Context())
	if err != nil {
		return mapSessionError(err)
	}

	res := dto.HistoryStepResponse{
		Applied: applied,
		Content: content,
	}
	return ctx.JSON(serverutils.SuccessResponse("Success undo", res))
}

func (c *sessionController) Redo(ctx *fiber.Ctx) error {
	content, applied, err := c.sessionService.Redo(ctx.Context())
	if err != nil {
		return mapSessionError(err)
	}

	res := dto.HistoryStepResponse{
		Applied: applied,
		Content: content,
	}
	return ctx.JSON(serverutils.SuccessResponse("Success redo", res))
}

func toDocumentResponses(docs []entity.Document) []dto.DocumentResponse {
	res := make([]dto.DocumentResponse, 0, len(docs))
	for _, d := range docs {
		res = append(res, dto.DocumentResponse{Id: d.Id, Title: d.Title})
	}
	return res
}

func mapSessionError(err error) error {
	switch {
	case errors.Is(err, service.ErrLastDocument):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case errors.Is(err, service.ErrIndexOutOfRange):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNoActiveDoc):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	default:
		return err
	}
}
