package campaign

import "errors"

var (
	ErrCampaignNotFound = errors.New("campaign not found")
	ErrNotCampaignOwner = errors.New("you do not own this campaign")
	ErrInvalidBilling   = errors.New("invalid billing configuration")
)
