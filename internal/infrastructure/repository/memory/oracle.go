package memory

import (
	"context"
	"sync"

	"github.com/bescout/fantasy-events/internal/domain/card"
	"github.com/bescout/fantasy-events/internal/domain/holding"
)

// Oracle is an in-memory holdings oracle for dev mode and tests.
type Oracle struct {
	mu       sync.RWMutex
	cards    map[string]card.Card
	holdings map[string]map[string]int // userID -> cardID -> copies
	profiles map[string]holding.Profile
}

func NewOracle() *Oracle {
	return &Oracle{
		cards:    make(map[string]card.Card),
		holdings: make(map[string]map[string]int),
		profiles: make(map[string]holding.Profile),
	}
}

func (o *Oracle) AddCard(c card.Card) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.cards[c.ID] = c
}

func (o *Oracle) SetHolding(userID, cardID string, copies int) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.holdings[userID] == nil {
		o.holdings[userID] = make(map[string]int)
	}
	o.holdings[userID][cardID] = copies
}

func (o *Oracle) SetProfile(p holding.Profile) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.profiles[p.UserID] = p
}

func (o *Oracle) HoldingsForUser(_ context.Context, userID string) (map[string]int, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	result := make(map[string]int, len(o.holdings[userID]))
	for cardID, copies := range o.holdings[userID] {
		result[cardID] = copies
	}

	return result, nil
}

func (o *Oracle) Profile(_ context.Context, userID string) (holding.Profile, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	p, ok := o.profiles[userID]
	if !ok {
		return holding.Profile{UserID: userID}, nil
	}

	return p, nil
}

func (o *Oracle) CardsByID(_ context.Context, cardIDs []string) (map[string]card.Card, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	result := make(map[string]card.Card, len(cardIDs))
	for _, id := range cardIDs {
		if c, ok := o.cards[id]; ok {
			result[id] = c
		}
	}

	return result, nil
}
