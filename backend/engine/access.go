package engine

import "campus/backend/models"

// CanAccess reports whether the user may view a unit of the course.
// Pure: safe to call per rendered item. Access is granted when the
// user is enrolled in the course, when the unit is free, or when the
// unit was bought standalone. A unit that does not belong to the
// course is always denied.
func CanAccess(course *models.Course, videoID int, enrollment models.EnrollmentRecord) bool {
	unit := course.VideoByID(videoID)
	if unit == nil {
		return false
	}
	if enrollment.Enrolled {
		return true
	}
	if unit.IsFree {
		return true
	}
	return enrollment.PurchasedVideoIDs.Contains(videoID)
}
