// Package console はGCT Reporterの管理コンソールを提供するHTTPサーバー。
//
// ブラウザごとのセッションはCookieに保存したセッションIDで識別し、
// バックエンドのセッショントークンはセッションストアに保持する。
// すべての画面遷移はナビゲーションガードを通り、バックエンドへの呼び出しは
// Gateway Clientのインターセプタチェーンを通る。呼び出しの失敗通知は
// リクエスト単位で集められ、画面のメッセージとして表示される。
package console
