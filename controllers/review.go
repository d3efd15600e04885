package controllers

import (
	"edutrack/middleware"
	"edutrack/services"
	"edutrack/validators"

	"github.com/gofiber/fiber/v2"
)

type ReviewController struct {
	reviews *services.Reviews
}

func NewReviewController(reviews *services.Reviews) *ReviewController {
	return &ReviewController{reviews: reviews}
}

func (h *ReviewController) Create(c *fiber.Ctx) error {
	reqData := c.Locals(validators.KeyReview).(*validators.ReviewRequest)

	review, err := h.reviews.Create(c.UserContext(), reqData.ToInput())
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Review submitted successfully!", review)
}

func (h *ReviewController) List(c *fiber.Ctx) error {
	page := c.Locals(validators.KeyPage).(*validators.Page)
	reviews, err := h.reviews.List(c.UserContext(), services.Page{Limit: page.Limit, Offset: page.Offset})
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Reviews retrieved successfully!", reviews)
}

func (h *ReviewController) ByTraining(c *fiber.Ctx) error {
	reviews, err := h.reviews.ListByTraining(c.UserContext(), c.Locals("id").(uint))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Reviews retrieved successfully!", reviews)
}

func (h *ReviewController) ByParticipant(c *fiber.Ctx) error {
	review, err := h.reviews.GetByParticipant(c.UserContext(), c.Locals("id").(uint))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Review retrieved successfully!", review)
}
