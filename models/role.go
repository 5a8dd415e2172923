package models

// Permission, rol yetkilerini bit flag olarak temsil eder.
//
// Kontrol: (permissions & PermPostReadOnly) != 0
// Ekleme:  permissions | PermPostReadOnly
type Permission int64

const (
	PermViewRoom     Permission = 1 << iota // 1
	PermReact                               // 2
	PermPostReadOnly                        // 4: read-only odada yazma/tepki
	PermMuteUser                            // 8
	PermManageEmoji                         // 16
	PermAdmin                               // 32: her şeye izin verir
)

// PermAll, tüm yetkilerin toplamıdır.
const PermAll Permission = (1 << 6) - 1

// permissionNames, capability isimlerini bit'lere eşler.
var permissionNames = map[string]Permission{
	"view-room":                PermViewRoom,
	"react":                    PermReact,
	"post-readonly":            PermPostReadOnly,
	"mute-user":                PermMuteUser,
	"manage-emoji":             PermManageEmoji,
	"view-room-administration": PermAdmin,
}

// PermissionByName, capability isminden Permission bit'ini döner.
func PermissionByName(name string) (Permission, bool) {
	p, ok := permissionNames[name]
	return p, ok
}

// Has, belirli bir yetkinin var olup olmadığını kontrol eder.
func (p Permission) Has(perm Permission) bool {
	// ADMIN yetkisi her şeye izin verir
	if p&PermAdmin != 0 {
		return true
	}
	return p&perm != 0
}

// Role, bir kullanıcı rolünü temsil eder.
// Global roller users.roles'ten, oda bazlı roller oda üyeliğinden gelir.
type Role struct {
	ID          string     `json:"id" bson:"_id"`
	Name        string     `json:"name" bson:"name"`
	Permissions Permission `json:"permissions" bson:"permissions"`
}
