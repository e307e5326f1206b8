package envelope

import (
	"encoding/json"
	"testing"
)

// TestSucceeded はSucceededがcode==200のみを成功とみなすことを検証する。
func TestSucceeded(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		code int
		want bool
	}{
		{name: "200は成功", code: 200, want: true},
		{name: "0は失敗", code: 0, want: false},
		{name: "400は失敗", code: 400, want: false},
		{name: "201も失敗", code: 201, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			e := Envelope[any]{Code: tt.code}
			if got := e.Succeeded(); got != tt.want {
				t.Errorf("Succeeded() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestFail は失敗封筒のJSON形式を検証する。
func TestFail(t *testing.T) {
	t.Parallel()

	b, err := json.Marshal(Fail(404, "用户不存在"))
	if err != nil {
		t.Fatalf("シリアライズに失敗: %v", err)
	}
	want := `{"code":404,"message":"用户不存在","data":null}`
	if string(b) != want {
		t.Errorf("JSON = %s, want %s", b, want)
	}
}

// TestRawDecode はRawでデータ部を遅延デコードできることを検証する。
func TestRawDecode(t *testing.T) {
	t.Parallel()

	var raw Raw
	if err := json.Unmarshal([]byte(`{"code":200,"message":"ok","data":{"exists":true}}`), &raw); err != nil {
		t.Fatalf("デシリアライズに失敗: %v", err)
	}
	if !raw.Succeeded() {
		t.Fatal("成功封筒として扱われるべき")
	}

	var data struct {
		Exists bool `json:"exists"`
	}
	if err := json.Unmarshal(raw.Data, &data); err != nil {
		t.Fatalf("データ部のデシリアライズに失敗: %v", err)
	}
	if !data.Exists {
		t.Error("exists = false, want true")
	}
}
