package partner

import "errors"

var (
	ErrPartnerNotFound = errors.New("partner not found")
	ErrPartnerExists   = errors.New("user already has a partner account")
)
