package handlers

import (
	"context"
	"errors"
	"log"
	"strconv"

	"github.com/amirphl/morevans-pricing/app/dto"
	businessflow "github.com/amirphl/morevans-pricing/business_flow"
	"github.com/amirphl/morevans-pricing/utils"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// PricingAdminHandlerInterface defines the pricing admin endpoints
type PricingAdminHandlerInterface interface {
	ListFactors(c fiber.Ctx) error
	CreateFactor(c fiber.Ctx) error
	UpdateFactor(c fiber.Ctx) error
	DeleteFactor(c fiber.Ctx) error
	ListConfigurations(c fiber.Ctx) error
	CreateConfiguration(c fiber.Ctx) error
	UpdateConfiguration(c fiber.Ctx) error
	DeleteConfiguration(c fiber.Ctx) error
	SetDefaultConfiguration(c fiber.Ctx) error
}

// PricingAdminHandler serves the pricing admin API. Listings and saved resources are sent as
// bare JSON, errors as APIResponse so the message field is always present.
type PricingAdminHandler struct {
	flow      businessflow.PricingAdminFlow
	validator *validator.Validate
}

func NewPricingAdminHandler(flow businessflow.PricingAdminFlow) PricingAdminHandlerInterface {
	return &PricingAdminHandler{
		flow:      flow,
		validator: validator.New(),
	}
}

func (h *PricingAdminHandler) ErrorResponse(c fiber.Ctx, status int, message, code string, details any) error {
	return c.Status(status).JSON(dto.APIResponse{Success: false, Message: message, Error: dto.ErrorDetail{Code: code, Details: details}})
}

func (h *PricingAdminHandler) SuccessResponse(c fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(dto.APIResponse{Success: true, Message: message, Data: data})
}

// ListFactors returns every factor grouped by category.
// Route: GET /admin/pricing-factors/
func (h *PricingAdminHandler) ListFactors(c fiber.Ctx) error {
	ctx, cancel := h.createRequestContext(c, "/admin/pricing-factors/")
	defer cancel()

	res, err := h.flow.AdminListFactors(ctx)
	if err != nil {
		log.Println("List pricing factors failed:", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "List pricing factors failed", "PRICING_FACTOR_LIST_FAILED", nil)
	}
	return c.Status(fiber.StatusOK).JSON(res)
}

// CreateFactor creates a factor in the category named by the slug.
// Route: POST /admin/pricing-factors/:slug/
func (h *PricingAdminHandler) CreateFactor(c fiber.Ctx) error {
	return h.saveFactor(c, 0, fiber.StatusCreated)
}

// UpdateFactor replaces a factor.
// Route: PUT /admin/pricing-factors/:slug/:id/
func (h *PricingAdminHandler) UpdateFactor(c fiber.Ctx) error {
	id, err := parseID(c.Params("id"))
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid factor id", "INVALID_ID", nil)
	}
	return h.saveFactor(c, id, fiber.StatusOK)
}

func (h *PricingAdminHandler) saveFactor(c fiber.Ctx, id uint, status int) error {
	category, ok := businessflow.CategoryForSlug(c.Params("slug"))
	if !ok {
		return h.ErrorResponse(c, fiber.StatusNotFound, "Unknown pricing factor category", "PRICING_FACTOR_CATEGORY_INVALID", c.Params("slug"))
	}

	var body map[string]any
	if err := c.Bind().JSON(&body); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	ctx, cancel := h.createRequestContext(c, "/admin/pricing-factors/"+c.Params("slug")+"/")
	defer cancel()

	factor, err := h.flow.AdminSaveFactor(ctx, category, id, body)
	if err != nil {
		switch {
		case businessflow.IsFactorNameRequired(err),
			businessflow.IsAttributeNotInCategory(err),
			businessflow.IsAttributeInvalid(err):
			return h.ErrorResponse(c, fiber.StatusBadRequest, businessflow.UserMessage(err), businessflow.ErrorCode(err), nil)
		case businessflow.IsFactorNotFound(err):
			return h.ErrorResponse(c, fiber.StatusNotFound, businessflow.UserMessage(err), businessflow.ErrorCode(err), nil)
		}
		log.Println("Save pricing factor failed:", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Save pricing factor failed", "PRICING_FACTOR_SAVE_FAILED", nil)
	}
	return c.Status(status).JSON(factor)
}

// DeleteFactor removes a factor.
// Route: DELETE /admin/pricing-factors/:id/
func (h *PricingAdminHandler) DeleteFactor(c fiber.Ctx) error {
	id, err := parseID(c.Params("id"))
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid factor id", "INVALID_ID", nil)
	}

	ctx, cancel := h.createRequestContext(c, "/admin/pricing-factors/:id/")
	defer cancel()

	if err := h.flow.AdminDeleteFactor(ctx, id); err != nil {
		if businessflow.IsFactorNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, businessflow.UserMessage(err), businessflow.ErrorCode(err), nil)
		}
		log.Println("Delete pricing factor failed:", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Delete pricing factor failed", "PRICING_FACTOR_DELETE_FAILED", nil)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListConfigurations returns every configuration.
// Route: GET /admin/price-configurations/
func (h *PricingAdminHandler) ListConfigurations(c fiber.Ctx) error {
	ctx, cancel := h.createRequestContext(c, "/admin/price-configurations/")
	defer cancel()

	res, err := h.flow.AdminListConfigurations(ctx)
	if err != nil {
		log.Println("List pricing configurations failed:", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "List pricing configurations failed", "PRICING_CONFIGURATION_LIST_FAILED", nil)
	}
	return c.Status(fiber.StatusOK).JSON(res)
}

// CreateConfiguration creates a configuration.
// Route: POST /admin/pricing/configurations/
func (h *PricingAdminHandler) CreateConfiguration(c fiber.Ctx) error {
	return h.saveConfiguration(c, 0, fiber.StatusCreated)
}

// UpdateConfiguration replaces a configuration.
// Route: PUT /admin/pricing/configurations/:id/
func (h *PricingAdminHandler) UpdateConfiguration(c fiber.Ctx) error {
	id, err := parseID(c.Params("id"))
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid configuration id", "INVALID_ID", nil)
	}
	return h.saveConfiguration(c, id, fiber.StatusOK)
}

func (h *PricingAdminHandler) saveConfiguration(c fiber.Ctx, id uint, status int) error {
	var req dto.PricingConfigurationRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if msgs := h.validate(&req); len(msgs) > 0 {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", msgs)
	}

	ctx, cancel := h.createRequestContext(c, "/admin/pricing/configurations/")
	defer cancel()

	cfg, err := h.flow.AdminSaveConfiguration(ctx, id, &req)
	if err != nil {
		switch {
		case businessflow.IsConfigurationNameRequired(err), businessflow.IsInvalidCategory(err):
			return h.ErrorResponse(c, fiber.StatusBadRequest, businessflow.UserMessage(err), businessflow.ErrorCode(err), nil)
		case businessflow.IsConfigurationNotFound(err):
			return h.ErrorResponse(c, fiber.StatusNotFound, businessflow.UserMessage(err), businessflow.ErrorCode(err), nil)
		}
		log.Println("Save pricing configuration failed:", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Save pricing configuration failed", "PRICING_CONFIGURATION_SAVE_FAILED", nil)
	}
	return c.Status(status).JSON(cfg)
}

// DeleteConfiguration removes a configuration, default or not.
// Route: DELETE /admin/pricing/configurations/:id/
func (h *PricingAdminHandler) DeleteConfiguration(c fiber.Ctx) error {
	id, err := parseID(c.Params("id"))
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid configuration id", "INVALID_ID", nil)
	}

	ctx, cancel := h.createRequestContext(c, "/admin/pricing/configurations/:id/")
	defer cancel()

	if err := h.flow.AdminDeleteConfiguration(ctx, id); err != nil {
		if businessflow.IsConfigurationNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, businessflow.UserMessage(err), businessflow.ErrorCode(err), nil)
		}
		log.Println("Delete pricing configuration failed:", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Delete pricing configuration failed", "PRICING_CONFIGURATION_DELETE_FAILED", nil)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// SetDefaultConfiguration makes one configuration the only default.
// Route: PATCH /admin/pricing/configurations/set-default/
func (h *PricingAdminHandler) SetDefaultConfiguration(c fiber.Ctx) error {
	var req dto.SetDefaultConfigurationRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if msgs := h.validate(&req); len(msgs) > 0 {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", msgs)
	}

	ctx, cancel := h.createRequestContext(c, "/admin/pricing/configurations/set-default/")
	defer cancel()

	if err := h.flow.AdminSetDefaultConfiguration(ctx, req.ConfigurationID); err != nil {
		if businessflow.IsConfigurationNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, businessflow.UserMessage(err), businessflow.ErrorCode(err), nil)
		}
		log.Println("Set default configuration failed:", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Set default configuration failed", "PRICING_CONFIGURATION_SET_DEFAULT_FAILED", nil)
	}
	return c.Status(fiber.StatusOK).JSON(dto.MessageResponse{Message: "Default configuration updated"})
}

// validate runs the struct rules and returns the messages of the failed ones
func (h *PricingAdminHandler) validate(req any) []string {
	err := h.validator.Struct(req)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return []string{err.Error()}
	}
	messages := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		messages = append(messages, getValidationErrorMessage(e))
	}
	return messages
}

func (h *PricingAdminHandler) createRequestContext(c fiber.Ctx, endpoint string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), utils.RequestTimeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	return ctx, cancel
}

func parseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid id")
	}
	return uint(id), nil
}
