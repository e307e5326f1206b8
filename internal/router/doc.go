// Package router はコンソール画面のルート表とナビゲーションガードを提供する。
//
// ガードはすべての画面遷移の前に評価され、認証が必要な画面への未ログインでの
// 遷移をログイン画面へ、ログイン済みでのログイン画面への遷移をダッシュボードへ
// 振り替える。遷移先が表示タイトルを宣言していれば、判定より先に文書タイトルを設定する。
package router
