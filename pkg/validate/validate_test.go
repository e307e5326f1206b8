package validate

import (
	"errors"
	"testing"
)

type sample struct {
	Username string  `json:"username" validate:"required"`
	Password string  `json:"password" validate:"required,min=6,max=50"`
	Role     string  `json:"role,omitempty" validate:"omitempty,oneof=ADMIN VIEWER"`
	Note     *string `json:"-"`
}

// TestStruct は構造体の検証を検証する。
func TestStruct(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input sample
		want  map[string]string
	}{
		{
			name:  "正しい入力はエラーにならないこと",
			input: sample{Username: "admin", Password: "admin123", Role: "ADMIN"},
		},
		{
			name:  "必須項目が空ならjson名でメッセージが返ること",
			input: sample{Password: "admin123"},
			want:  map[string]string{"username": "username不能为空"},
		},
		{
			name:  "短すぎるパスワードはminのメッセージが返ること",
			input: sample{Username: "a", Password: "123"},
			want:  map[string]string{"password": "password长度不能少于6个字符"},
		},
		{
			name:  "列挙外のロールはoneofのメッセージが返ること",
			input: sample{Username: "a", Password: "123456", Role: "ROOT"},
			want:  map[string]string{"role": "role必须是以下之一: ADMIN VIEWER"},
		},
	}

	v := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := v.Struct(tt.input)
			if tt.want == nil {
				if err != nil {
					t.Fatalf("Struct()でエラーが発生: %v", err)
				}
				return
			}

			var ve *Error
			if !errors.As(err, &ve) {
				t.Fatalf("err = %v, want *Error", err)
			}
			got := ve.Map()
			for field, msg := range tt.want {
				if got[field] != msg {
					t.Errorf("%s = %q, want %q", field, got[field], msg)
				}
			}
			if len(got) != len(tt.want) {
				t.Errorf("len(errors) = %d, want %d (%v)", len(got), len(tt.want), got)
			}
		})
	}
}
