// Package migrations встраивает SQL-миграции схемы в бинарник сервиса.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
