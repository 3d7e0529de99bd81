package types

import "encoding/json"

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,has_at"`
	Password string `json:"password" validate:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type UpdatePasswordRequest struct {
	Password string `json:"password"`
}

type InviteRequest struct {
	Email string `json:"email"`
}

// GenerateRequest is the body of the AI proxy endpoint.
type GenerateRequest struct {
	Prompt       string `json:"prompt"`
	SystemPrompt string `json:"systemPrompt"`
	Model        string `json:"model,omitempty"`
	JSONMode     bool   `json:"jsonMode,omitempty"`
}

type ProjectCreateRequest struct {
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description" validate:"max=5000"`
}

type ProjectUpdateRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

type StageRequest struct {
	Stage string `json:"stage" validate:"required,stage"`
}

type BlueprintCreateRequest struct {
	Content json.RawMessage `json:"content" validate:"required"`
}

type AuditCreateRequest struct {
	Findings  json.RawMessage `json:"findings" validate:"required"`
	RiskScore *int            `json:"risk_score" validate:"required,gte=0,lte=100"`
}

type DocumentCreateRequest struct {
	Type    string `json:"type" validate:"required"`
	Title   string `json:"title" validate:"required,max=300"`
	Summary string `json:"summary"`
	Content string `json:"content" validate:"required"`
}

type GenerateDocumentRequest struct {
	Type string `json:"type" validate:"required,oneof=TECH_SPEC USER_GUIDE"`
}

type DesignSessionRequest struct {
	CurrentDesignDoc string `json:"current_design_doc"`
	CurrentStep      int    `json:"current_step" validate:"gte=0"`
}

type ProfileRequest struct {
	FullName  string `json:"full_name" validate:"required,max=120"`
	Role      string `json:"role" validate:"max=64"`
	Company   string `json:"company" validate:"max=120"`
	AvatarURL string `json:"avatar_url" validate:"omitempty,url"`
}
