package database

import "embed"

// EmbeddedMigrations, migrations/*.sql dosyalarını binary'ye gömer.
// fs.Sub(EmbeddedMigrations, "migrations") ile kök dizine indirilerek New'e verilir.
//
//go:embed migrations/*.sql
var EmbeddedMigrations embed.FS
