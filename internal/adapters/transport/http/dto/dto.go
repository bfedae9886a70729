package dto

type RegisterDTO struct {
	FirstName string `json:"firstName" validate:"required,min=3,max=50"`
	LastName  string `json:"lastName"  validate:"required,min=3,max=50"`
	Email     string `json:"email"     validate:"required,email"`
	Password  string `json:"password"  validate:"required,min=6"`
}

type LoginDTO struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UpdateUserDTO struct {
	FirstName string `json:"firstName" validate:"omitempty,min=3,max=50"`
	LastName  string `json:"lastName"  validate:"omitempty,min=3,max=50"`
	Email     string `json:"email"     validate:"omitempty,email"`
	Password  string `json:"password"  validate:"omitempty,min=6"`
}

type UpdateProfileDTO struct {
	ProfileTitle    string `form:"profileTitle"    validate:"required,max=100"`
	Bio             string `form:"bio"             validate:"required,max=500"`
	BackgroundColor string `form:"backgroundColor" validate:"omitempty,hexcolor"`
	ExistingImage   string `form:"existingImage"   validate:"omitempty,url"`
}

type CreateLinkDTO struct {
	Title string `json:"title" validate:"required,max=100"`
	URL   string `json:"url"   validate:"required,url,startswith=http"`
}

type ForgotPasswordDTO struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordDTO struct {
	Password string `json:"password" validate:"required,min=6"`
}
