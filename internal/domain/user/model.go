package user

// Principal is the authenticated caller attached to a request context.
type Principal struct {
	UserID           string
	DisplayName      string
	SubscriptionTier int
}
