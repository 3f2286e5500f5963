package controllers

import (
	"errors"
	"strconv"

	"campus/backend/config"
	"campus/backend/engine"
	"campus/backend/models"
	"campus/backend/store"
	"campus/backend/utils"
	"campus/backend/validators"

	"github.com/gofiber/fiber/v2"
)

type AssignmentsController struct {
	Store   store.Store
	Tracker *engine.AssignmentTracker
	Cfg     *config.Config
}

func NewAssignmentsController(st store.Store, tracker *engine.AssignmentTracker, cfg *config.Config) *AssignmentsController {
	return &AssignmentsController{Store: st, Tracker: tracker, Cfg: cfg}
}

func (ac *AssignmentsController) params(c *fiber.Ctx) (*models.Course, int, error) {
	courseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return nil, 0, fiber.NewError(fiber.StatusBadRequest, "Invalid course ID")
	}
	assignmentID, err := strconv.Atoi(c.Params("assignmentId"))
	if err != nil {
		return nil, 0, fiber.NewError(fiber.StatusBadRequest, "Invalid assignment ID")
	}
	course, err := ac.Store.CourseByID(uint(courseID))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, 0, fiber.NewError(fiber.StatusNotFound, "Course not found")
		}
		return nil, 0, fiber.NewError(fiber.StatusInternalServerError, "Could not query database")
	}
	return course, assignmentID, nil
}

// ApplyAction runs one lifecycle action (start, continue, submit,
// review) against the user's submission. Invalid moves come back as
// applied:false with the status untouched.
func (ac *AssignmentsController) ApplyAction(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	course, assignmentID, err := ac.params(c)
	if err != nil {
		return utils.Error(c, err.(*fiber.Error).Code, err)
	}

	var input validators.AssignmentActionRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if errs := validators.Check(input); errs != nil {
		return utils.ValidationError(c, errs)
	}

	submission, err := ac.Tracker.ApplyAction(userID, course, assignmentID, input.Action)
	switch {
	case err == nil:
		return c.JSON(fiber.Map{
			"applied": true,
			"status":  submission.Status,
		})
	case errors.Is(err, engine.ErrUnknownUnit):
		return utils.NotFound(c, "Assignment not found in course")
	case errors.Is(err, engine.ErrAccessDenied):
		return utils.Forbidden(c, "Enrollment required")
	case errors.Is(err, engine.ErrInvalidTransition):
		// Defended no-op: nothing changed, nothing persisted.
		return c.JSON(fiber.Map{
			"applied": false,
			"status":  submission.Status,
		})
	default:
		return utils.Error(c, fiber.StatusInternalServerError, errors.New("could not apply action"))
	}
}

// Complete is the admin grading route: submitted -> completed for the
// given user's submission.
func (ac *AssignmentsController) Complete(c *fiber.Ctx) error {
	course, assignmentID, err := ac.params(c)
	if err != nil {
		return utils.Error(c, err.(*fiber.Error).Code, err)
	}

	var input struct {
		UserID uint `json:"user_id"`
	}
	if err := c.BodyParser(&input); err != nil || input.UserID == 0 {
		return utils.BadRequest(c, "Missing user_id")
	}

	submission, err := ac.Tracker.Complete(input.UserID, course, assignmentID)
	switch {
	case err == nil:
		return c.JSON(fiber.Map{"applied": true, "status": submission.Status})
	case errors.Is(err, engine.ErrUnknownUnit):
		return utils.NotFound(c, "Assignment not found in course")
	case errors.Is(err, engine.ErrInvalidTransition):
		return c.JSON(fiber.Map{"applied": false, "status": submission.Status})
	default:
		return utils.Error(c, fiber.StatusInternalServerError, errors.New("could not complete assignment"))
	}
}
