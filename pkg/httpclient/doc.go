// Package httpclient はバックエンドAPIを呼び出す共有ゲートウェイクライアントを提供する。
//
// ベースURLとタイムアウトを持つ一つのクライアントに、リクエスト/レスポンスの
// インターセプタを順序付きのチェーンとして登録する。認証トークンの付与、
// 封筒(code/message/data)の検査、HTTPエラーの翻訳と通知といった横断的な
// ポリシーはすべてこのチェーンで一律に適用される。
//
// 失敗は必ず *Error として返され、返却前にちょうど一回だけ Notifier に通知される。
package httpclient
