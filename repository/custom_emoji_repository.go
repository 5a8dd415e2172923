package repository

import "context"

// CustomEmojiRepository, özel emoji kataloğu.
// CountByNameOrAlias, name alanı veya aliases listesi verilen isimle eşleşen
// kayıt sayısını döner. İsim iki nokta içermemelidir.
type CustomEmojiRepository interface {
	CountByNameOrAlias(ctx context.Context, name string) (int64, error)
}
