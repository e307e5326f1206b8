// Package session はセッショントークンの保存と読み取りを提供する。
//
// トークンはStoreにセッションID単位で保存される。Managerはコンテキストから
// セッションIDを取り出し、ゲートウェイクライアントとナビゲーションガードに
// トークンを供給する。ログイン/ログアウト処理だけがSaveとClearを呼ぶ。
package session
