// Package inventory tracks purchasable arena items and what each user
// owns. Free-tier items are granted to everyone on first sight.
package inventory

import (
	"fmt"

	"github.com/stagefront/arena/permission"
)

// Type groups items by what they do in the arena.
type Type string

const (
	TypeEmote     Type = "emote"
	TypeAccessory Type = "accessory"
	TypeEffect    Type = "effect"
	TypeBadge     Type = "badge"
)

// Rarity drives presentation, not availability.
type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

// Item is one catalog entry.
type Item struct {
	ID          string
	Type        Type
	Name        string
	Description string
	Icon        string
	Tier        permission.Tier
	Cost        int
	Rarity      Rarity
}

var tierRank = map[permission.Tier]int{
	permission.TierFree:     0,
	permission.TierPremium:  1,
	permission.TierVIP:      2,
	permission.TierSponsor:  3,
	permission.TierOverseer: 4,
}

// TierAtLeast reports whether have grants access to items gated at want.
func TierAtLeast(have, want permission.Tier) bool {
	return tierRank[have] >= tierRank[want]
}

// userState is one user's holdings.
type userState struct {
	owned map[string]bool
	coins int
}

// Manager is the item catalog plus per-user ownership. Not safe for
// concurrent use; callers drive it from the game loop.
type Manager struct {
	items map[string]Item
	order []string
	users map[string]*userState
}

func NewManager() *Manager {
	return &Manager{
		items: make(map[string]Item),
		users: make(map[string]*userState),
	}
}

// RegisterItem adds or replaces a catalog entry.
func (m *Manager) RegisterItem(item Item) {
	if _, exists := m.items[item.ID]; !exists {
		m.order = append(m.order, item.ID)
	}
	m.items[item.ID] = item
}

// RegisterItems adds several catalog entries.
func (m *Manager) RegisterItems(items []Item) {
	for _, it := range items {
		m.RegisterItem(it)
	}
}

// Item looks up a catalog entry by ID.
func (m *Manager) Item(id string) (Item, bool) {
	it, ok := m.items[id]
	return it, ok
}

// Items returns the full catalog in registration order.
func (m *Manager) Items() []Item {
	out := make([]Item, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.items[id])
	}
	return out
}

// ByType filters the catalog by item type.
func (m *Manager) ByType(t Type) []Item {
	var out []Item
	for _, it := range m.Items() {
		if it.Type == t {
			out = append(out, it)
		}
	}
	return out
}

// ByTier returns the items a user at the given tier may acquire,
// which includes every lower tier's items.
func (m *Manager) ByTier(tier permission.Tier) []Item {
	var out []Item
	for _, it := range m.Items() {
		if TierAtLeast(tier, it.Tier) {
			out = append(out, it)
		}
	}
	return out
}

// user returns the holdings for userID, seeding free items on first use.
func (m *Manager) user(userID string) *userState {
	u, ok := m.users[userID]
	if !ok {
		u = &userState{owned: make(map[string]bool)}
		for _, it := range m.Items() {
			if it.Tier == permission.TierFree && it.Cost == 0 {
				u.owned[it.ID] = true
			}
		}
		m.users[userID] = u
	}
	return u
}

// Grant gives an item to a user without charging for it.
func (m *Manager) Grant(userID, itemID string) error {
	if _, ok := m.items[itemID]; !ok {
		return fmt.Errorf("inventory: grant %s: unknown item", itemID)
	}
	m.user(userID).owned[itemID] = true
	return nil
}

// Owns reports whether the user holds the item.
func (m *Manager) Owns(userID, itemID string) bool {
	return m.user(userID).owned[itemID]
}

// Owned returns the user's items in catalog order.
func (m *Manager) Owned(userID string) []Item {
	u := m.user(userID)
	var out []Item
	for _, it := range m.Items() {
		if u.owned[it.ID] {
			out = append(out, it)
		}
	}
	return out
}

// Deposit adds spendable currency to the user's balance.
func (m *Manager) Deposit(userID string, amount int) {
	if amount > 0 {
		m.user(userID).coins += amount
	}
}

// Balance returns the user's currency balance.
func (m *Manager) Balance(userID string) int {
	return m.user(userID).coins
}

// Purchase buys an item for the user, checking tier gate, balance, and
// prior ownership.
func (m *Manager) Purchase(userID, itemID string, tier permission.Tier) error {
	it, ok := m.items[itemID]
	if !ok {
		return fmt.Errorf("inventory: purchase %s: unknown item", itemID)
	}
	u := m.user(userID)
	if u.owned[itemID] {
		return fmt.Errorf("inventory: purchase %s: already owned", itemID)
	}
	if !TierAtLeast(tier, it.Tier) {
		return fmt.Errorf("inventory: purchase %s: requires %s tier", itemID, it.Tier)
	}
	if u.coins < it.Cost {
		return fmt.Errorf("inventory: purchase %s: balance %d below cost %d", itemID, u.coins, it.Cost)
	}
	u.coins -= it.Cost
	u.owned[itemID] = true
	return nil
}

// Use checks that the user owns the item before activating it.
func (m *Manager) Use(userID, itemID string) (Item, error) {
	it, ok := m.items[itemID]
	if !ok {
		return Item{}, fmt.Errorf("inventory: use %s: unknown item", itemID)
	}
	if !m.user(userID).owned[itemID] {
		return Item{}, fmt.Errorf("inventory: use %s: not owned", itemID)
	}
	return it, nil
}
