package types

// SignupRequest is the body of POST /api/auth/signup
type SignupRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// LoginRequest is the body of POST /api/auth/login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// ChatRecipeContext is the recipe snapshot a chat request carries. The
// relay holds no conversation memory; each request is self-contained.
type ChatRecipeContext struct {
	Name         string   `json:"name"`
	Ingredients  []string `json:"ingredients"`
	Instructions string   `json:"instructions"`
}

// ChatRequest is the body of POST /api/chat
type ChatRequest struct {
	Message string            `json:"message" binding:"required"`
	Recipe  ChatRecipeContext `json:"recipe"`
}
