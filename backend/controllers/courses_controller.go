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

type CoursesController struct {
	Store       store.Store
	Machine     *engine.EnrollmentMachine
	Assignments *engine.AssignmentTracker
	Cfg         *config.Config
}

func NewCoursesController(st store.Store, machine *engine.EnrollmentMachine, assignments *engine.AssignmentTracker, cfg *config.Config) *CoursesController {
	return &CoursesController{Store: st, Machine: machine, Assignments: assignments, Cfg: cfg}
}

func (cc *CoursesController) GetCourses(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	courses, err := cc.Store.Courses()
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, errors.New("could not query courses"))
	}

	result := make([]fiber.Map, 0, len(courses))
	for i := range courses {
		course := &courses[i]
		enrollment, _ := cc.Store.Enrollment(userID, course.ID)
		progress, _ := cc.Store.Progress(userID, course.ID)

		result = append(result, fiber.Map{
			"id":             course.ID,
			"title":          course.Title,
			"short_desc":     course.ShortDesc,
			"difficulty":     course.Difficulty,
			"price":          course.Price,
			"original_price": course.OriginalPrice,
			"is_free":        course.IsFree,
			"certificate":    course.Certificate,
			"videos":         len(course.Videos),
			"enrolled":       enrollment.Enrolled,
			"progress":       engine.CompletionPercentage(course, progress),
		})
	}

	return c.JSON(result)
}

// GetCourseDetails returns the full derived state the detail view
// renders: per-unit access, completion percentage, resume point,
// enrollment step and per-assignment status.
func (cc *CoursesController) GetCourseDetails(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	courseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	course, err := cc.Store.CourseByID(uint(courseID))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return utils.NotFound(c, "Course not found")
		}
		return utils.Error(c, fiber.StatusInternalServerError, errors.New("could not query database"))
	}

	enrollment, _ := cc.Store.Enrollment(userID, course.ID)
	progress, _ := cc.Store.Progress(userID, course.ID)

	videos := make([]fiber.Map, 0, len(course.Videos))
	for i := range course.Videos {
		video := &course.Videos[i]
		videos = append(videos, fiber.Map{
			"video_id":       video.VideoID,
			"module":         video.ModuleName,
			"title":          video.Title,
			"duration":       video.Duration,
			"is_free":        video.IsFree,
			"price":          video.Price,
			"access_granted": engine.CanAccess(course, video.VideoID, enrollment),
			"completed":      progress.CompletedVideoIDs.Contains(video.VideoID),
		})
	}

	assignments := make([]fiber.Map, 0, len(course.Assignments))
	for i := range course.Assignments {
		assignment := &course.Assignments[i]
		submission, _ := cc.Assignments.Status(userID, assignment)
		assignments = append(assignments, fiber.Map{
			"assignment_id": assignment.AssignmentID,
			"module":        assignment.ModuleName,
			"title":         assignment.Title,
			"type":          assignment.Type,
			"points":        assignment.Points,
			"due_date":      assignment.DueDate,
			"difficulty":    assignment.Difficulty,
			"status":        submission.Status,
		})
	}

	detail := fiber.Map{
		"id":             course.ID,
		"title":          course.Title,
		"description":    course.Description,
		"short_desc":     course.ShortDesc,
		"price":          course.Price,
		"original_price": course.OriginalPrice,
		"is_free":        course.IsFree,
		"certificate":    course.Certificate,
		"enrolled":       enrollment.Enrolled,
		"progress":       engine.CompletionPercentage(course, progress),
		"videos":         videos,
		"assignments":    assignments,
	}
	if next := engine.NextUnit(course, progress); next != nil {
		detail["next_video_id"] = next.VideoID
	}
	if step, ok := cc.Machine.Step(userID, course.ID); ok {
		detail["enrollment_step"] = step
	}

	return c.JSON(fiber.Map{"course": detail})
}

func (cc *CoursesController) CreateCourse(c *fiber.Ctx) error {
	var input validators.CreateCourseRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if errs := validators.Check(input); errs != nil {
		return utils.ValidationError(c, errs)
	}

	course := models.Course{
		Title:         input.Title,
		ShortDesc:     input.ShortDesc,
		Description:   input.Description,
		Difficulty:    input.Difficulty,
		Price:         input.Price,
		OriginalPrice: input.OriginalPrice,
		IsFree:        input.IsFree,
		Certificate:   input.Certificate,
	}
	if err := cc.Store.CreateCourse(&course); err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, errors.New("could not create course"))
	}

	return c.JSON(fiber.Map{
		"message": "Course created",
		"course": fiber.Map{
			"id":    course.ID,
			"title": course.Title,
		},
	})
}

func (cc *CoursesController) AddVideo(c *fiber.Ctx) error {
	courseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	var input validators.AddVideoRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if errs := validators.Check(input); errs != nil {
		return utils.ValidationError(c, errs)
	}

	video := models.VideoUnit{
		VideoID:       input.VideoID,
		ModuleName:    input.ModuleName,
		Title:         input.Title,
		Duration:      input.Duration,
		IsFree:        input.IsFree,
		Price:         input.Price,
		SequenceOrder: input.SequenceOrder,
	}
	if err := cc.Store.AddVideo(uint(courseID), &video); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return utils.NotFound(c, "Course not found")
		}
		return utils.Error(c, fiber.StatusInternalServerError, errors.New("could not add video"))
	}

	return c.JSON(fiber.Map{"message": "Video added", "video_id": video.VideoID})
}

func (cc *CoursesController) AddAssignment(c *fiber.Ctx) error {
	courseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	var input validators.AddAssignmentRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if errs := validators.Check(input); errs != nil {
		return utils.ValidationError(c, errs)
	}

	assignment := models.Assignment{
		AssignmentID:  input.AssignmentID,
		ModuleName:    input.ModuleName,
		Title:         input.Title,
		Type:          input.Type,
		Points:        input.Points,
		DueDate:       input.DueDate,
		Difficulty:    input.Difficulty,
		SequenceOrder: input.SequenceOrder,
	}
	if err := cc.Store.AddAssignment(uint(courseID), &assignment); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return utils.NotFound(c, "Course not found")
		}
		return utils.Error(c, fiber.StatusInternalServerError, errors.New("could not add assignment"))
	}

	return c.JSON(fiber.Map{"message": "Assignment added", "assignment_id": assignment.AssignmentID})
}
