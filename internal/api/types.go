package api

// ロール名。
const (
	RoleAdmin    = "ADMIN"
	RoleDesigner = "DESIGNER"
	RoleViewer   = "VIEWER"
)

// LoginRequest はログイン要求。
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse はログイン応答。
type LoginResponse struct {
	// Token はセッショントークン。
	Token string `json:"token"`
	// Username はログインしたユーザー名。
	Username string `json:"username"`
	// Role はユーザーのロール。
	Role string `json:"role"`
	// UserID はユーザーID。
	UserID int64 `json:"userId"`
}

// UserInfo は現在のログインユーザー情報。
type UserInfo struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	Enabled  bool   `json:"enabled"`
}

// ChangePasswordRequest はパスワード変更要求。
type ChangePasswordRequest struct {
	Username        string `json:"username" validate:"required"`
	OldPassword     string `json:"oldPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6,max=50"`
	ConfirmPassword string `json:"confirmPassword" validate:"required"`
}

// CheckNameResponse はレポート名の重複確認結果。
type CheckNameResponse struct {
	Exists bool `json:"exists"`
}

// User はユーザー。
type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Role      string `json:"role"`
	Enabled   bool   `json:"enabled"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// CreateUserRequest はユーザー作成要求。Enabledがnilなら有効として作成される。
type CreateUserRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=6,max=50"`
	Role     string `json:"role" validate:"required,oneof=ADMIN DESIGNER VIEWER"`
	Enabled  *bool  `json:"enabled,omitempty"`
}

// UpdateUserRequest はユーザーの部分更新要求。nilのフィールドは変更しない。
type UpdateUserRequest struct {
	Password *string `json:"password,omitempty" validate:"omitempty,min=6,max=50"`
	Role     *string `json:"role,omitempty" validate:"omitempty,oneof=ADMIN DESIGNER VIEWER"`
	Enabled  *bool   `json:"enabled,omitempty"`
}
