// Package models, uygulamanın domain modellerini tanımlar.
//
// Aynı struct'lar hem SQLite repository'leri (json kolonları) hem de
// Mongo repository'leri (bson tag'leri) tarafından kullanılır.
package models

// User, bir kullanıcıyı temsil eder.
// Username reaction üyelik anahtarıdır; Language kullanıcıya gösterilen
// hata metinlerinin dilini belirler ("en", "tr").
type User struct {
	ID       string   `json:"id" bson:"_id"`
	Username string   `json:"username" bson:"username"`
	Name     string   `json:"name,omitempty" bson:"name,omitempty"`
	Language string   `json:"language" bson:"language"`
	Roles    []string `json:"roles,omitempty" bson:"roles,omitempty"`
}
