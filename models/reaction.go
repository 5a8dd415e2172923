package models

import "slices"

// Reaction, bir mesajdaki tek bir emoji anahtarının tepki kaydıdır.
// Usernames sıralı, ekleme sırasını koruyan bir listedir.
//
// Invariant: map'te bulunan bir reaction'ın Usernames listesi asla boş değildir;
// son kullanıcı çıkarıldığında anahtar da silinir.
type Reaction struct {
	Usernames []string `json:"usernames" bson:"usernames"`
}

// Reactions, reaction anahtarından (":smile:") kayda giden map.
type Reactions map[string]*Reaction

// ReactionOutcome, bir toggle çağrısının sonucudur.
type ReactionOutcome string

const (
	ReactionAdded     ReactionOutcome = "added"
	ReactionRemoved   ReactionOutcome = "removed"
	ReactionUnchanged ReactionOutcome = "unchanged"
)

// Clone, map'in derin kopyasını döner. nil map için nil döner.
func (r Reactions) Clone() Reactions {
	if r == nil {
		return nil
	}
	out := make(Reactions, len(r))
	for key, reaction := range r {
		if reaction == nil {
			continue
		}
		out[key] = &Reaction{Usernames: slices.Clone(reaction.Usernames)}
	}
	return out
}
