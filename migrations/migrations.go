// Package migrations はスキーマ定義のSQLファイルをバイナリに埋め込む。
package migrations

import "embed"

// FS は{version}_{name}.sql形式のマイグレーションファイル群。
//
//go:embed *.sql
var FS embed.FS
