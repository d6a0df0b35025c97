package model

// Identity is the verified caller identity produced by the identity
// provider. It is never persisted by this service.
type Identity struct {
	UserID      string
	DisplayName string
	PhotoURL    string
}
