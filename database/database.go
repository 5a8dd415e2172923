// Package database, store bağlantılarını ve SQLite migration sistemini yönetir.
//
// İki driver desteklenir: SQLite (modernc.org/sqlite, pure-Go) ve MongoDB.
// SQLite için şema migrations/ altındaki embed edilmiş SQL dosyalarından kurulur;
// Mongo şemasızdır, sadece index'ler MongoStore.EnsureIndexes ile oluşturulur.
//
// Go'da database/sql standart kütüphanesi farklı veritabanlarına ortak bir
// arayüz (interface) sunar; asıl işi "driver" yapar. Driver paketi import
// edildiğinde init() fonksiyonu içinde sql.Register("sqlite", ...) çağırır.
// Biz driver'ın hiçbir fonksiyonunu doğrudan kullanmadığımız için onu
// "blank import" ile alırız:
//
//	import _ "modernc.org/sqlite"
//
// Alt çizgi, derleyiciye "bu paketi sadece yan etkisi (side effect) için
// import ediyorum" der. Aksi halde kullanılmayan import derleme hatası olurdu.
package database

import (
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite" // pure-Go SQLite driver, CGO gerektirmez; "sqlite" adıyla kayıt olur
)

// Tekrar çalıştırıldığında güvenle atlanabilen migration hataları.
var recoverableErrors = []string{
	"duplicate column name",
}

// DB, SQLite connection pool'unu saran struct.
//
// *sql.DB tek bir bağlantı DEĞİLDİR; Go'nun built-in connection pool'udur.
// Thread-safe'dir: birden fazla goroutine aynı *sql.DB'yi kilit kullanmadan
// paylaşabilir, pool gerektiğinde yeni bağlantı açar.
type DB struct {
	Conn *sql.DB
}

// New, SQLite dosyasını açar ve bekleyen migration'ları uygular.
//
// dbPath: dosya yolu (ör: "./data/tepki.db")
// migrationsFS: .sql dosyalarını kök dizinde içeren fs.FS (embed.FS veya os.DirFS)
//
// Dönüş tipi (*DB, error) Go'nun "multiple return value" özelliğidir:
// başarılıysa (*DB, nil), başarısızsa (nil, error). Hata durumunda açılmış
// bağlantı burada kapatılır, çağıran tarafın temizleyeceği bir şey kalmaz.
func New(dbPath string, migrationsFS fs.FS) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// Pragma'lar DSN query param olarak verilir, pool'un açtığı HER bağlantıya uygulanır:
	//   foreign_keys(1)   → FK constraint'leri aktif (SQLite'ta varsayılan kapalı!)
	//   journal_mode(WAL) → Write-Ahead Logging: okuyucular yazarı beklemez
	//   busy_timeout(5000) → kilitli DB'de hemen SQLITE_BUSY yerine 5 sn bekle
	// modernc driver'ının adı "sqlite"tır (mattn/go-sqlite3'ünki "sqlite3").
	conn, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db := &DB{Conn: conn}
	if err := db.runMigrations(migrationsFS); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info().Str("component", "database").Str("path", dbPath).Msg("connected and migrations applied")
	return db, nil
}

// Close, bağlantı havuzunu kapatır.
// Go'da kaynak temizliği "defer" ile yapılır:
//
//	db, err := database.New(path, migrations)
//	if err != nil { ... }
//	defer db.Close() // çevreleyen fonksiyon dönerken çağrılır
//
// defer'lar LIFO sırasıyla çalışır: en son defer edilen ilk çalışır.
func (db *DB) Close() error {
	return db.Conn.Close()
}

// runMigrations, henüz uygulanmamış .sql dosyalarını isim sırasıyla çalıştırır
// ve schema_migrations tablosuna kaydeder.
//
// schema_migrations boş ama users tablosu zaten varsa (tracking öncesi kurulum)
// tüm dosyalar uygulanmış sayılır.
func (db *DB) runMigrations(migrationsFS fs.FS) error {
	if _, err := db.Conn.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			filename   TEXT PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return fmt.Errorf("failed to create schema_migrations table: %w", err)
	}

	files, err := listMigrations(migrationsFS)
	if err != nil {
		return err
	}

	applied, err := db.appliedMigrations()
	if err != nil {
		return err
	}

	if len(applied) == 0 {
		bootstrapped, err := db.bootstrapExisting(files)
		if err != nil {
			return err
		}
		if bootstrapped {
			return nil
		}
	}

	for _, file := range files {
		if applied[file] {
			continue
		}

		content, err := fs.ReadFile(migrationsFS, file)
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", file, err)
		}

		if err := db.execStatements(file, string(content)); err != nil {
			return err
		}

		if _, err := db.Conn.Exec("INSERT INTO schema_migrations (filename) VALUES (?)", file); err != nil {
			return fmt.Errorf("failed to record migration %s: %w", file, err)
		}

		log.Info().Str("component", "database").Str("file", file).Msg("migration applied")
	}

	return nil
}

func listMigrations(migrationsFS fs.FS) ([]string, error) {
	entries, err := fs.ReadDir(migrationsFS, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

func (db *DB) appliedMigrations() (map[string]bool, error) {
	rows, err := db.Conn.Query("SELECT filename FROM schema_migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to query schema_migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan migration row: %w", err)
		}
		applied[name] = true
	}
	return applied, rows.Err()
}

func (db *DB) bootstrapExisting(files []string) (bool, error) {
	var tableCount int
	if err := db.Conn.QueryRow(
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='users'",
	).Scan(&tableCount); err != nil {
		return false, fmt.Errorf("failed to check existing tables: %w", err)
	}
	if tableCount == 0 {
		return false, nil
	}

	for _, file := range files {
		if _, err := db.Conn.Exec("INSERT INTO schema_migrations (filename) VALUES (?)", file); err != nil {
			return false, fmt.Errorf("failed to bootstrap migration %s: %w", file, err)
		}
	}
	log.Info().Str("component", "database").Int("count", len(files)).Msg("bootstrapped existing migrations")
	return true, nil
}

// execStatements, dosyayı statement'lara bölüp tek tek çalıştırır.
// recoverableErrors'tan biriyle biten statement atlanır.
func (db *DB) execStatements(filename, content string) error {
	for i, stmt := range splitStatements(content) {
		if _, err := db.Conn.Exec(stmt); err != nil {
			if isRecoverable(err) {
				log.Warn().Str("component", "database").Str("file", filename).
					Int("statement", i+1).Err(err).Msg("statement skipped")
				continue
			}
			return fmt.Errorf("failed to execute migration %s (statement %d): %w", filename, i+1, err)
		}
	}
	return nil
}

func isRecoverable(err error) bool {
	msg := err.Error()
	for _, pattern := range recoverableErrors {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}

// splitStatements, SQL metnini ';' ile böler. Tek tırnaklı string literal'ler
// ve "--" satır yorumları içindeki ';' ayırıcı sayılmaz.
func splitStatements(script string) []string {
	var (
		statements []string
		current    strings.Builder
		inString   bool
		inComment  bool
	)

	flush := func() {
		if s := strings.TrimSpace(current.String()); s != "" {
			statements = append(statements, s)
		}
		current.Reset()
	}

	for i := 0; i < len(script); i++ {
		ch := script[i]

		if inComment {
			if ch == '\n' {
				inComment = false
				current.WriteByte(ch)
			}
			continue
		}

		switch {
		case !inString && ch == '-' && i+1 < len(script) && script[i+1] == '-':
			inComment = true
			i++
			continue
		case ch == '\'':
			// '' → escape edilmiş tırnak
			if inString && i+1 < len(script) && script[i+1] == '\'' {
				current.WriteString("''")
				i++
				continue
			}
			inString = !inString
		case ch == ';' && !inString:
			flush()
			continue
		}

		current.WriteByte(ch)
	}
	flush()

	return statements
}
