// Package envelope はバックエンドとフロントエンド層で共有するレスポンス封筒を定義する。
//
// すべてのレスポンスボディは {code, message, data} の形式で返される。
// code == 200 のみが成功を表し、HTTPステータスが2xxであってもそれ以外のcodeは
// アプリケーションエラーとして扱う。
package envelope

import "encoding/json"

// CodeSuccess は成功を表すcode値。
const CodeSuccess = 200

// MessageSuccess は成功時の既定メッセージ。
const MessageSuccess = "操作成功"

// Envelope はレスポンスボディの共通構造。
type Envelope[T any] struct {
	// Code はアプリケーションレベルの結果コード。200のみが成功。
	Code int `json:"code"`
	// Message は利用者に表示可能なメッセージ。
	Message string `json:"message"`
	// Data はエンドポイント固有のペイロード。
	Data T `json:"data"`
}

// Raw はデータ部を未デコードのまま保持する封筒。
type Raw = Envelope[json.RawMessage]

// Succeeded はcodeが成功を表すかどうかを返す。
func (e Envelope[T]) Succeeded() bool {
	return e.Code == CodeSuccess
}

// OK は成功の封筒を生成する。
func OK[T any](data T) Envelope[T] {
	return Envelope[T]{Code: CodeSuccess, Message: MessageSuccess, Data: data}
}

// OKWithMessage はメッセージ付きの成功封筒を生成する。
func OKWithMessage[T any](message string, data T) Envelope[T] {
	return Envelope[T]{Code: CodeSuccess, Message: message, Data: data}
}

// Fail はデータ部を持たない失敗の封筒を生成する。
func Fail(code int, message string) Envelope[any] {
	return Envelope[any]{Code: code, Message: message}
}
