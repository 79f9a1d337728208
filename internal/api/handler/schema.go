package handler

// errorResponse documents the error envelope for swag. It mirrors
// api.errorResponse, which the HTTP error handler actually renders.
type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// --- Auth ---

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token     string       `json:"token"`
	TokenType string       `json:"token_type"`
	ExpiresAt string       `json:"expires_at"`
	User      userResponse `json:"user"`
}

// --- Users ---

type createUserRequest struct {
	Name        string `json:"name"          validate:"required,max=200"`
	Email       string `json:"email"         validate:"required,email,max=200"`
	Password    string `json:"password"      validate:"required,min=8"`
	DateOfBirth string `json:"date_of_birth" validate:"required,pastdate"`
	Gender      string `json:"gender"        validate:"required,oneof=M m F f"`
	NationalID  string `json:"national_id"   validate:"required,alphanum"`
	Address     string `json:"address"       validate:"required,max=500"`
	Country     string `json:"country"       validate:"required,max=50"`
	Phone       string `json:"phone"         validate:"required"`
}

type updateUserRequest struct {
	Name        *string `json:"name"          validate:"omitempty,max=200"`
	Email       *string `json:"email"         validate:"omitempty,email,max=200"`
	Password    *string `json:"password"      validate:"omitempty,min=8"`
	DateOfBirth *string `json:"date_of_birth" validate:"omitempty,pastdate"`
	Gender      *string `json:"gender"        validate:"omitempty,oneof=M m F f"`
	NationalID  *string `json:"national_id"   validate:"omitempty,alphanum"`
	Address     *string `json:"address"       validate:"omitempty,max=500"`
	Country     *string `json:"country"       validate:"omitempty,max=50"`
	Phone       *string `json:"phone"`
}

type roleAssignmentRequest struct {
	Role string `json:"role" validate:"required"`
}

type userResponse struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Email       string   `json:"email"`
	Age         int      `json:"age"`
	DateOfBirth string   `json:"date_of_birth"`
	Gender      string   `json:"gender"`
	NationalID  string   `json:"national_id"`
	Address     string   `json:"address"`
	Country     string   `json:"country"`
	Phone       string   `json:"phone"`
	Roles       []string `json:"roles"`
}

// --- Roles ---

type createRoleRequest struct {
	Name  string `json:"name"  validate:"required,max=100"`
	Label string `json:"label" validate:"required,max=100"`
}

type updateRoleRequest struct {
	Name  *string `json:"name"  validate:"omitempty,max=100"`
	Label *string `json:"label" validate:"omitempty,max=100"`
}

type permissionAssignmentRequest struct {
	Permission string `json:"permission" validate:"required"`
}

type roleResponse struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Label       string   `json:"label"`
	Permissions []string `json:"permissions"`
}

// --- Listing ---

type pageMeta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	TotalPages int   `json:"total_pages"`
}

type userListResponse struct {
	Data []userResponse `json:"data"`
	Meta pageMeta       `json:"meta"`
}

type roleListResponse struct {
	Data []roleResponse `json:"data"`
	Meta pageMeta       `json:"meta"`
}
