package controller

import (
	"note-editor-be/internal/dto"
	"note-editor-be/internal/pkg/serverutils"
	"note-editor-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ISettingsController interface {
	RegisterRoutes(r fiber.Router)
	Get(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
}

type settingsController struct {
	settingsService service.ISettingsService
}

func NewSettingsController(settingsService service.ISettingsService) ISettingsController {
	return &settingsController{
		settingsService: settingsService,
	}
}

func (c *settingsController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/settings/v1")
	h.Get("", c.Get)
	h.Put("", c.Update)
}

func (c *settingsController) Get(ctx *fiber.Ctx) error {
	settings, err := c.settingsService.Get(ctx.Context())
	if err != nil {
		return err
	}

	res := dto.SettingsResponse{
		APIKeyConfigured:    settings.APIKeyConfigured,
		FontSize:            settings.FontSize,
		TranslationLanguage: settings.TranslationLanguage,
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get settings", res))
}

func (c *settingsController) Update(ctx *fiber.Ctx) error {
	var req dto.UpdateSettingsRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if req.APIKey != nil {
		if err := c.settingsService.SetAPIKey(ctx.Context(), *req.APIKey); err != nil {
			return err
		}
	}
	if req.FontSize != nil {
		if err := c.settingsService.SetFontSize(ctx.Context(), *req.FontSize); err != nil {
			return err
		}
	}
	if req.TranslationLanguage != nil {
		if err := c.settingsService.SetTranslationLanguage(ctx.Context(), *req.TranslationLanguage); err != nil {
			return err
		}
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success update settings", nil))
}
