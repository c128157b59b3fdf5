package request

// RegenerateFeedKey holds the request body for the feed key regeneration
// action.
type RegenerateFeedKey struct {
	User  string `json:"user" validate:"required"`
	Nonce string `json:"nonce" validate:"required"`
}
