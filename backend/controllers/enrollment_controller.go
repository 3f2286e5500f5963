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

type EnrollmentController struct {
	Store   store.Store
	Machine *engine.EnrollmentMachine
	Cfg     *config.Config
}

func NewEnrollmentController(st store.Store, machine *engine.EnrollmentMachine, cfg *config.Config) *EnrollmentController {
	return &EnrollmentController{Store: st, Machine: machine, Cfg: cfg}
}

func (ec *EnrollmentController) course(c *fiber.Ctx) (*models.Course, error) {
	courseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Invalid course ID")
	}
	course, err := ec.Store.CourseByID(uint(courseID))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "Course not found")
		}
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Could not query database")
	}
	return course, nil
}

func (ec *EnrollmentController) stepResponse(c *fiber.Ctx, step engine.Step, err error) error {
	switch {
	case err == nil:
		return c.JSON(fiber.Map{"step": step})
	case errors.Is(err, engine.ErrAlreadyEnrolled):
		return utils.Error(c, fiber.StatusConflict, errors.New("already enrolled in this course"))
	case errors.Is(err, engine.ErrFlowActive):
		return utils.Error(c, fiber.StatusConflict, errors.New("enrollment is already processing"))
	case errors.Is(err, engine.ErrSettlementFailed):
		// The one user-visible failure: the flow parks in the
		// error step and the client offers a retry.
		return c.Status(fiber.StatusPaymentRequired).JSON(fiber.Map{
			"step":  step,
			"error": "settlement failed",
			"retry": true,
		})
	case errors.Is(err, engine.ErrInvalidTransition):
		// Out-of-order intents are no-ops; report where the flow
		// actually is.
		return c.JSON(fiber.Map{"step": step, "applied": false})
	default:
		return utils.Error(c, fiber.StatusInternalServerError, errors.New("enrollment failed"))
	}
}

// BeginEnrollment godoc
// @Summary Open the enrollment dialog
// @Description Starts (or resumes) the enrollment flow at the confirmation step
// @Tags enrollment
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security ApiKeyAuth
// @Router /courses/{id}/enroll [post]
func (ec *EnrollmentController) BeginEnrollment(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	course, err := ec.course(c)
	if err != nil {
		return utils.Error(c, err.(*fiber.Error).Code, err)
	}
	step, err := ec.Machine.Begin(userID, course)
	return ec.stepResponse(c, step, err)
}

func (ec *EnrollmentController) Confirm(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	course, err := ec.course(c)
	if err != nil {
		return utils.Error(c, err.(*fiber.Error).Code, err)
	}
	step, err := ec.Machine.Confirm(userID, course.ID)
	return ec.stepResponse(c, step, err)
}

// SubmitDetails advances past the details step. Free courses settle
// right away; paid ones stop at the payment step.
func (ec *EnrollmentController) SubmitDetails(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	course, err := ec.course(c)
	if err != nil {
		return utils.Error(c, err.(*fiber.Error).Code, err)
	}
	step, err := ec.Machine.SubmitDetails(c.Context(), userID, course)
	return ec.stepResponse(c, step, err)
}

func (ec *EnrollmentController) Pay(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	course, err := ec.course(c)
	if err != nil {
		return utils.Error(c, err.(*fiber.Error).Code, err)
	}

	var input validators.PaymentRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if errs := validators.Check(input); errs != nil {
		return utils.ValidationError(c, errs)
	}

	method := engine.PaymentMethod{Kind: input.Kind, Token: input.Token, Holder: input.Holder}
	step, err := ec.Machine.Pay(c.Context(), userID, course, method)
	return ec.stepResponse(c, step, err)
}

func (ec *EnrollmentController) Retry(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	course, err := ec.course(c)
	if err != nil {
		return utils.Error(c, err.(*fiber.Error).Code, err)
	}
	step, err := ec.Machine.Retry(userID, course.ID)
	return ec.stepResponse(c, step, err)
}

func (ec *EnrollmentController) Abort(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	course, err := ec.course(c)
	if err != nil {
		return utils.Error(c, err.(*fiber.Error).Code, err)
	}
	if err := ec.Machine.Abort(userID, course.ID); err != nil {
		return utils.Error(c, fiber.StatusConflict, errors.New("enrollment is already processing"))
	}
	return c.JSON(fiber.Map{"aborted": true})
}

// BuyVideo purchases a single unit without enrolling.
func (ec *EnrollmentController) BuyVideo(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	course, err := ec.course(c)
	if err != nil {
		return utils.Error(c, err.(*fiber.Error).Code, err)
	}
	videoID, err := strconv.Atoi(c.Params("videoId"))
	if err != nil {
		return utils.BadRequest(c, "Invalid video ID")
	}

	var input validators.PaymentRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if errs := validators.Check(input); errs != nil {
		return utils.ValidationError(c, errs)
	}

	method := engine.PaymentMethod{Kind: input.Kind, Token: input.Token, Holder: input.Holder}
	err = ec.Machine.BuyVideo(c.Context(), userID, course, videoID, method)
	switch {
	case err == nil:
		state, _ := ec.Machine.PurchaseStateFor(userID, course.ID, videoID)
		return c.JSON(fiber.Map{"state": state})
	case errors.Is(err, engine.ErrUnknownUnit):
		return utils.NotFound(c, "Video not found in course")
	case errors.Is(err, engine.ErrFlowActive):
		return utils.Error(c, fiber.StatusConflict, errors.New("purchase is already processing"))
	case errors.Is(err, engine.ErrSettlementFailed):
		return c.Status(fiber.StatusPaymentRequired).JSON(fiber.Map{
			"error": "settlement failed",
			"retry": true,
		})
	default:
		return utils.Error(c, fiber.StatusInternalServerError, errors.New("purchase failed"))
	}
}

func (ec *EnrollmentController) Transactions(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	txs, err := ec.Store.Transactions(userID)
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, errors.New("could not query transactions"))
	}
	return c.JSON(fiber.Map{"transactions": txs})
}
