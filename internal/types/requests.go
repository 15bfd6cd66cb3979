package types

// LoginRequest represents the request body for /api/login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RegisterRequest represents the request body for /api/register.
// Every field is required, matching the registration form.
type RegisterRequest struct {
	FirstName   string `json:"firstName" binding:"required"`
	LastName    string `json:"lastName" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	Nationality string `json:"nationality" binding:"required"`
	Phone       string `json:"phone" binding:"required"`
	Password    string `json:"password" binding:"required,min=6"`
}

// DishRequest represents the request body for creating or updating a dish.
// Updates are a full replace of the mutable fields, so create and update
// share the same shape.
type DishRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	QuickPrep   bool     `json:"quickPrep"`
	PrepTime    int      `json:"prepTime"`
	CookTime    int      `json:"cookTime"`
	ImageURL    string   `json:"imageUrl"`
	Steps       []string `json:"steps"`
	Calories    *int     `json:"calories"`
}
