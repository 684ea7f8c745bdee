package dto

// LoginRequest represents login credentials
type LoginRequest struct {
	Username string `json:"username" binding:"required,max=64"`
	Password string `json:"password" binding:"required,max=128"`
}

// ClassRequest identifies a class by id (get_class, join_class, leave_class, cancel_class)
type ClassRequest struct {
	ID int64 `json:"id" binding:"required,min=1"`
}

// UpdateAttendeeRequest records a trainer verdict for one attendee row
type UpdateAttendeeRequest struct {
	ID    int64  `json:"id" binding:"required,min=1"`
	State string `json:"state" binding:"required,oneof=pass fail remove"`
}

// CreateClassRequest carries a new class. Calendar fields are checked by the scheduler so that
// every invalid field is reported together.
type CreateClassRequest struct {
	SkillID int64  `json:"id" binding:"required,min=1"`
	Note    string `json:"note" binding:"max=1000"`
	Max     *int   `json:"max" binding:"required"`
	Day     *int   `json:"day" binding:"required"`
	Month   *int   `json:"month" binding:"required"`
	Year    *int   `json:"year" binding:"required"`
	Hour    *int   `json:"hour" binding:"required"`
	Minute  *int   `json:"minute" binding:"required"`
}
