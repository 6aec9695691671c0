package db

import "errors"

// Sentinel errors returned by Storage. Handlers map these onto HTTP
// statuses; everything else is treated as a store failure.
var (
	ErrNotFound        = errors.New("not found")
	ErrAlreadyAwarded  = errors.New("bidding already awarded")
	ErrBidNotApproved  = errors.New("bid is not approved")
	ErrAlreadyReceived = errors.New("bid already received")
	ErrNotReceived     = errors.New("bid has not been received")
	ErrAlreadyRated    = errors.New("bid already rated")
)
