package dto

type CheckEmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ExistsUserResponse struct {
	Exists bool `json:"exists"`
}
