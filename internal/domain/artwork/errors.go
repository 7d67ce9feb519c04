package artwork

import "errors"

var (
	ErrArtworkNotFound = errors.New("artwork not found")
	ErrNotArtworkOwner = errors.New("you do not own this artwork")
	ErrNotPurchasable  = errors.New("artwork is not available for purchase")
)
