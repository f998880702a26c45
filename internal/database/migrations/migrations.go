// Package migrations содержит SQL-миграции схемы для каждого поддерживаемого диалекта.
package migrations

import "embed"

// FS хранит каталоги postgres/ и sqlite/ с файлами в формате golang-migrate.
//
//go:embed postgres/*.sql sqlite/*.sql
var FS embed.FS
