package validators

import (
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// RegisterRequest is the signup payload.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// LoginRequest is the login payload.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// PaymentRequest carries opaque payment method details. The engine
// never reads them; they pass straight to the gateway.
type PaymentRequest struct {
	Kind   string `json:"kind" validate:"required,oneof=card wallet"`
	Token  string `json:"token" validate:"required"`
	Holder string `json:"holder"`
}

// WatchProgressRequest is one playback sample reduced to the watched
// fraction.
type WatchProgressRequest struct {
	Fraction float64 `json:"fraction" validate:"gte=0,lte=1"`
}

// AssignmentActionRequest dispatches one lifecycle action.
type AssignmentActionRequest struct {
	Action string `json:"action" validate:"required,oneof=start continue submit review"`
}

// CreateCourseRequest is the admin catalog payload.
type CreateCourseRequest struct {
	Title         string `json:"title" validate:"required"`
	ShortDesc     string `json:"short_desc"`
	Description   string `json:"description"`
	Difficulty    string `json:"difficulty" validate:"omitempty,oneof=beginner intermediate advanced"`
	Price         int    `json:"price" validate:"gte=0"`
	OriginalPrice int    `json:"original_price" validate:"gte=0"`
	IsFree        bool   `json:"is_free"`
	Certificate   bool   `json:"certificate"`
}

// AddVideoRequest is the admin payload for a new video unit.
type AddVideoRequest struct {
	VideoID       int    `json:"video_id" validate:"required,gt=0"`
	ModuleName    string `json:"module_name"`
	Title         string `json:"title" validate:"required"`
	Duration      int    `json:"duration" validate:"gte=0"`
	IsFree        bool   `json:"is_free"`
	Price         int    `json:"price" validate:"gte=0"`
	SequenceOrder int    `json:"sequence_order"`
}

// AddAssignmentRequest is the admin payload for a new assignment.
type AddAssignmentRequest struct {
	AssignmentID  int    `json:"assignment_id" validate:"required,gt=0"`
	ModuleName    string `json:"module_name"`
	Title         string `json:"title" validate:"required"`
	Type          string `json:"type" validate:"required,oneof=quiz project discussion coding practical challenge"`
	Points        int    `json:"points" validate:"gte=0"`
	DueDate       string `json:"due_date"`
	Difficulty    string `json:"difficulty"`
	SequenceOrder int    `json:"sequence_order"`
}

// Check validates a payload and returns per-field messages, nil when
// the payload is valid.
func Check(payload interface{}) map[string]string {
	err := validate.Struct(payload)
	if err == nil {
		return nil
	}
	errors := make(map[string]string)
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, fieldErr := range validationErrors {
			errors[fieldErr.Field()] = "failed on " + fieldErr.Tag()
		}
	} else {
		errors["payload"] = err.Error()
	}
	return errors
}
