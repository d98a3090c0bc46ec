package dto

type RegisterCandidateDTO struct {
	Name      string  `json:"name" form:"name" validate:"required,notblank,max=120"`
	Email     string  `json:"email" form:"email" validate:"required,email"`
	Phone     string  `json:"phone" form:"phone" validate:"phone"`
	Education string  `json:"education" form:"education" validate:"max=200"`
	IDNumber  *string `json:"idNumber" form:"idNumber" validate:"omitempty,max=32"`
}

type SaveVideoDTO struct {
	UserID    string `json:"user_id"`
	VideoData string `json:"video_data"`
}

type SkipProcessingDTO struct {
	UserID string `json:"user_id"`
}
