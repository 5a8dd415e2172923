package models

// CustomEmoji, sunucuya yüklenmiş özel bir emoji kaydı.
// Name ve Aliases iki nokta (":") içermez.
type CustomEmoji struct {
	ID      string   `json:"id" bson:"_id"`
	Name    string   `json:"name" bson:"name"`
	Aliases []string `json:"aliases,omitempty" bson:"aliases,omitempty"`
}
