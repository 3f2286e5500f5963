package routes

import (
	"campus/backend/config"
	"campus/backend/controllers"
	"campus/backend/engine"
	"campus/backend/middleware"
	"campus/backend/store"

	"github.com/gofiber/fiber/v2"
)

// SetupRoutes wires the presentation layer to the engine. The store
// and gateway are injected so tests run against the in-memory backend
// and a scripted gateway.
func SetupRoutes(app *fiber.App, st store.Store, machine *engine.EnrollmentMachine, progress *engine.ProgressTracker, assignments *engine.AssignmentTracker, cfg *config.Config) {
	// Auth routes
	authController := controllers.NewAuthController(st, cfg)
	app.Post("/api/auth/register", authController.Register)
	app.Post("/api/auth/login", authController.Login)

	// Middleware
	authMiddleware := middleware.AuthMiddleware(cfg)
	adminMiddleware := middleware.AdminMiddleware(st, cfg)

	// Courses routes
	coursesController := controllers.NewCoursesController(st, machine, assignments, cfg)
	courses := app.Group("/api/courses", authMiddleware)
	courses.Get("/", coursesController.GetCourses)
	courses.Get("/:id", coursesController.GetCourseDetails)

	// Enrollment routes
	enrollmentController := controllers.NewEnrollmentController(st, machine, cfg)
	courses.Post("/:id/enroll", enrollmentController.BeginEnrollment)
	courses.Post("/:id/enroll/confirm", enrollmentController.Confirm)
	courses.Post("/:id/enroll/details", enrollmentController.SubmitDetails)
	courses.Post("/:id/enroll/pay", enrollmentController.Pay)
	courses.Post("/:id/enroll/retry", enrollmentController.Retry)
	courses.Post("/:id/enroll/abort", enrollmentController.Abort)
	courses.Post("/:id/videos/:videoId/purchase", enrollmentController.BuyVideo)
	app.Get("/api/transactions", authMiddleware, enrollmentController.Transactions)

	// Progress routes
	progressController := controllers.NewProgressController(st, progress, cfg)
	courses.Post("/:id/videos/:videoId/progress", progressController.RecordWatchProgress)
	courses.Get("/:id/progress", progressController.GetCourseProgress)

	// Assignment routes
	assignmentsController := controllers.NewAssignmentsController(st, assignments, cfg)
	courses.Post("/:id/assignments/:assignmentId/action", assignmentsController.ApplyAction)

	// Admin routes
	adminCourses := app.Group("/api/admin/courses", authMiddleware, adminMiddleware)
	adminCourses.Post("/", coursesController.CreateCourse)
	adminCourses.Post("/:id/videos", coursesController.AddVideo)
	adminCourses.Post("/:id/assignments", coursesController.AddAssignment)
	adminCourses.Post("/:id/assignments/:assignmentId/complete", assignmentsController.Complete)
}
