package handler

import (
	"vidquiz/internal/domain"
	"vidquiz/internal/dto"
	"vidquiz/internal/middleware"
	"vidquiz/internal/service"
	"vidquiz/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// QuizHandler exposes the quiz CRUD surface. All routes require an
// authenticated user; mutation routes are creator-only, enforced in the
// service layer.
type QuizHandler struct {
	quizService service.QuizService
}

func NewQuizHandler(quizService service.QuizService) *QuizHandler {
	return &QuizHandler{quizService: quizService}
}

// Create handles POST /api/quiz. In sync mode the response is 201 with the
// fully generated quiz; in queued mode it is 202 with the bare quiz and
// content appears once a worker finishes.
func (h *QuizHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateQuizRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("invalid request body")
	}
	if err := validation.ValidateCreateQuiz(req); err != nil {
		return err
	}

	quiz, err := h.quizService.CreateQuiz(c.Context(), middleware.UserID(c), req.URL)
	if err != nil {
		return err
	}

	status := fiber.StatusCreated
	if h.quizService.AsyncMode() {
		status = fiber.StatusAccepted
	}
	return c.Status(status).JSON(dto.NewQuizResponse(quiz))
}

// List handles GET /api/quiz.
func (h *QuizHandler) List(c *fiber.Ctx) error {
	quizzes, err := h.quizService.ListQuizzes(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(dto.NewQuizListResponse(quizzes))
}

// Get handles GET /api/quiz/:id.
func (h *QuizHandler) Get(c *fiber.Ctx) error {
	quiz, err := h.quizService.GetQuiz(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewQuizResponse(quiz))
}

// Update handles PUT /api/quiz/:id: full metadata replacement plus an
// unconditional question regeneration.
func (h *QuizHandler) Update(c *fiber.Ctx) error {
	var req dto.UpdateQuizRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("invalid request body")
	}
	if err := validation.ValidateUpdateQuiz(req); err != nil {
		return err
	}

	quiz, err := h.quizService.UpdateQuiz(c.Context(), middleware.UserID(c), c.Params("id"), service.UpdateQuizInput{
		VideoURL:    req.VideoURL,
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		return err
	}

	status := fiber.StatusOK
	if h.quizService.AsyncMode() {
		status = fiber.StatusAccepted
	}
	return c.Status(status).JSON(dto.NewQuizResponse(quiz))
}

// Patch handles PATCH /api/quiz/:id: partial edit, regenerating only when
// the url field was sent.
func (h *QuizHandler) Patch(c *fiber.Ctx) error {
	var req dto.PatchQuizRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("invalid request body")
	}
	if err := validation.ValidatePatchQuiz(req); err != nil {
		return err
	}

	quiz, err := h.quizService.PatchQuiz(c.Context(), middleware.UserID(c), c.Params("id"), service.PatchQuizInput{
		VideoURL:    req.VideoURL,
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		return err
	}

	status := fiber.StatusOK
	if req.VideoURL != nil && h.quizService.AsyncMode() {
		status = fiber.StatusAccepted
	}
	return c.Status(status).JSON(dto.NewQuizResponse(quiz))
}

// Delete handles DELETE /api/quiz/:id.
func (h *QuizHandler) Delete(c *fiber.Ctx) error {
	if err := h.quizService.DeleteQuiz(c.Context(), middleware.UserID(c), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
