package controllers

import (
	"errors"
	"strconv"

	"campus/backend/config"
	"campus/backend/engine"
	"campus/backend/store"
	"campus/backend/utils"
	"campus/backend/validators"

	"github.com/gofiber/fiber/v2"
)

type ProgressController struct {
	Store   store.Store
	Tracker *engine.ProgressTracker
	Cfg     *config.Config
}

func NewProgressController(st store.Store, tracker *engine.ProgressTracker, cfg *config.Config) *ProgressController {
	return &ProgressController{Store: st, Tracker: tracker, Cfg: cfg}
}

// RecordWatchProgress godoc
// @Summary Record a playback sample
// @Description Ingests the watched fraction for a video; crossing the completion threshold marks the unit done
// @Tags progress
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /courses/{id}/videos/{videoId}/progress [post]
func (pc *ProgressController) RecordWatchProgress(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	courseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}
	videoID, err := strconv.Atoi(c.Params("videoId"))
	if err != nil {
		return utils.BadRequest(c, "Invalid video ID")
	}

	var input validators.WatchProgressRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if errs := validators.Check(input); errs != nil {
		return utils.ValidationError(c, errs)
	}

	course, err := pc.Store.CourseByID(uint(courseID))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return utils.NotFound(c, "Course not found")
		}
		return utils.Error(c, fiber.StatusInternalServerError, errors.New("could not query database"))
	}

	progress, err := pc.Tracker.RecordWatch(userID, course, videoID, input.Fraction)
	switch {
	case err == nil:
	case errors.Is(err, engine.ErrUnknownUnit):
		return utils.NotFound(c, "Video not found in course")
	case errors.Is(err, engine.ErrAccessDenied):
		return utils.Forbidden(c, "No access to this video")
	default:
		return utils.Error(c, fiber.StatusInternalServerError, errors.New("could not record progress"))
	}

	response := fiber.Map{
		"message":  "Progress updated",
		"progress": engine.CompletionPercentage(course, progress),
	}
	if next := engine.NextUnit(course, progress); next != nil {
		response["next_video_id"] = next.VideoID
	}
	return c.JSON(response)
}

// GetCourseProgress godoc
// @Summary Get course progress
// @Description Returns completion percentage, completed units and the resume point
// @Tags progress
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security ApiKeyAuth
// @Router /courses/{id}/progress [get]
func (pc *ProgressController) GetCourseProgress(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	courseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	course, err := pc.Store.CourseByID(uint(courseID))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return utils.NotFound(c, "Course not found")
		}
		return utils.Error(c, fiber.StatusInternalServerError, errors.New("could not query database"))
	}

	progress, err := pc.Store.Progress(userID, course.ID)
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, errors.New("could not query progress"))
	}

	response := fiber.Map{
		"completion":       engine.CompletionPercentage(course, progress),
		"completed_videos": progress.CompletedVideoIDs,
		"last_activity_at": progress.LastActivityAt,
	}
	if progress.LastWatchedVideoID != nil {
		response["last_watched_video_id"] = *progress.LastWatchedVideoID
	}
	if next := engine.NextUnit(course, progress); next != nil {
		response["next_video_id"] = next.VideoID
	}
	return c.JSON(response)
}
