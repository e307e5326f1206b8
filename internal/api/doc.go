// Package api はGCT ReporterバックエンドAPIの型付きエンドポイント関数を提供する。
//
// 各メソッドは固定のHTTPメソッドとパスでGateway Clientを呼び出し、
// エンベロープを剥がしたdataペイロードだけを返す。失敗は通知済みの
// *httpclient.Error として返る。
package api
