package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"

	customlog "github.com/open-teleop/quadcontrol/pkg/log"
	"github.com/open-teleop/quadcontrol/services"
)

// ParamsHandler holds dependencies for the parameter file endpoints.
type ParamsHandler struct {
	paramsService services.ParamsService
	logger        customlog.Logger
}

// NewParamsHandler creates a new handler for parameter endpoints.
func NewParamsHandler(paramsService services.ParamsService, logger customlog.Logger) *ParamsHandler {
	if paramsService == nil {
		panic("ParamsService cannot be nil in NewParamsHandler")
	}
	if logger == nil {
		panic("Logger cannot be nil in NewParamsHandler")
	}
	return &ParamsHandler{
		paramsService: paramsService,
		logger:        logger,
	}
}

// RegisterParamsRoutes registers the parameter API endpoints with the Fiber app.
func RegisterParamsRoutes(app *fiber.App, paramsService services.ParamsService, logger customlog.Logger) {
	h := NewParamsHandler(paramsService, logger)

	apiGroup := app.Group("/api/v1/config")
	apiGroup.Get("/params", h.handleGetParams)
	apiGroup.Put("/params", h.handleUpdateParams)

	logger.Infof("Registered parameter API endpoints under /api/v1/config")
}

func (h *ParamsHandler) handleGetParams(c *fiber.Ctx) error {
	h.logger.Debugf("Handling GET request for /api/v1/config/params")
	yamlData, err := h.paramsService.GetParamsYAML()
	if err != nil {
		h.logger.Errorf("Failed to read parameter file: %v", err)
		return c.Status(http.StatusNotFound).JSON(fiber.Map{
			"error": fmt.Sprintf("Failed to retrieve parameters: %v", err),
		})
	}

	c.Set(fiber.HeaderContentType, "application/x-yaml")
	return c.Send(yamlData)
}

func (h *ParamsHandler) handleUpdateParams(c *fiber.Ctx) error {
	h.logger.Debugf("Handling PUT request for /api/v1/config/params")

	switch ct := c.Get(fiber.HeaderContentType); ct {
	case "application/x-yaml", "application/yaml", "text/yaml":
	default:
		h.logger.Warnf("Received PUT request with incorrect Content-Type: %s", ct)
	}

	newParamsYAML := c.Body()
	if len(newParamsYAML) == 0 {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": "Request body cannot be empty.",
		})
	}

	if err := h.paramsService.UpdateParams(newParamsYAML); err != nil {
		h.logger.Errorf("Failed to update parameters: %v", err)
		if errors.Is(err, services.ErrInvalidParams) {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{
				"error": fmt.Sprintf("Parameter update failed: %v", err),
			})
		}
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{
			"error": fmt.Sprintf("Internal server error during parameter update: %v", err),
		})
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"message": "Parameters updated. The running controller applies them on restart.",
	})
}
