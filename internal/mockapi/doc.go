// Package mockapi はGCT Reporterバックエンドの契約に従う開発用のAPIサーバーを提供する。
//
// すべての応答は {code, message, data} のエンベロープで返す。ユーザーと
// レポートはSQLiteに保存し、認証にはJWTを使う。ログアウトしたトークンは
// 失効リストに登録され、以降のリクエストは401になる。
package mockapi
