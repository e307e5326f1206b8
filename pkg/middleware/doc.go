// Package middleware はGinベースのHTTPサーバーで使用する共通ミドルウェアを提供する。
//
// JWT認証トークンの発行と検証、ロールによるアクセス制御、リクエストID付与、
// zerologによるアクセスログ、パニックリカバリ、CORS設定を含む。
// エラー応答はすべて {code, message, data} のエンベロープ形式で返す。
package middleware
