package controllers

import (
	"edutrack/middleware"
	"edutrack/services"
	"edutrack/validators"

	"github.com/gofiber/fiber/v2"
)

type TrainingController struct {
	catalog *services.Catalog
}

func NewTrainingController(catalog *services.Catalog) *TrainingController {
	return &TrainingController{catalog: catalog}
}

func (h *TrainingController) Create(c *fiber.Ctx) error {
	reqData, ok := c.Locals(validators.KeyTraining).(*validators.TrainingRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}
	principal, _ := middleware.CurrentPrincipal(c)

	training, err := h.catalog.Create(c.UserContext(), reqData.ToInput(principal.UserID))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Training created successfully!", training)
}

func (h *TrainingController) Update(c *fiber.Ctx) error {
	id := c.Locals("id").(uint)
	reqData, ok := c.Locals(validators.KeyTraining).(*validators.TrainingRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}
	principal, _ := middleware.CurrentPrincipal(c)

	training, err := h.catalog.Update(c.UserContext(), id, reqData.ToInput(principal.UserID))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Training updated successfully!", training)
}

func (h *TrainingController) Archive(c *fiber.Ctx) error {
	id := c.Locals("id").(uint)
	if err := h.catalog.Archive(c.UserContext(), id); err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Training archived successfully!", nil)
}

func (h *TrainingController) Get(c *fiber.Ctx) error {
	training, err := h.catalog.Get(c.UserContext(), c.Locals("id").(uint))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Training retrieved successfully!", training)
}

func (h *TrainingController) List(c *fiber.Ctx) error {
	query := c.Locals(validators.KeyTrainingFilter).(*validators.TrainingQuery)
	trainings, err := h.catalog.List(c.UserContext(), query.Filter())
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Trainings retrieved successfully!", trainings)
}
