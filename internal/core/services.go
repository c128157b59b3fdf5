package core

import "github.com/edvin/stream/internal/config"

type Services struct {
	FeedKey *FeedKeyService
	User    *UserService
	Record  *RecordService
	Policy  *AccessPolicy
	Nonce   *NonceService
}

func NewServices(db DB, cfg *config.Config) *Services {
	return &Services{
		FeedKey: NewFeedKeyService(db),
		User:    NewUserService(db),
		Record:  NewRecordService(db),
		Policy:  NewAccessPolicy(cfg.RoleAccess),
		Nonce:   NewNonceService(cfg.NonceSecret),
	}
}
