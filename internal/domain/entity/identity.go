package entity

// Identity is what a verified ID token says about its holder.
type Identity struct {
	UID   string
	Email string
	Role  Role
}
