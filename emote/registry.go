// Package emote holds the emote catalog and lays out live emote bursts
// above avatars. The registry is an explicit object built once at startup
// and handed to whoever needs it; there is no package-level catalog.
package emote

import (
	"fmt"

	"github.com/stagefront/arena/inventory"
	"github.com/stagefront/arena/permission"
)

// Definition describes one emote in the catalog.
type Definition struct {
	Kind        string
	Name        string
	Icon        string
	Animation   string
	SoundEffect string
	Tier        permission.Tier
	Cost        int
	Rarity      inventory.Rarity
}

// Registry is the emote catalog. Registering an emote also registers a
// matching purchasable item when an inventory manager is attached.
type Registry struct {
	emotes map[string]Definition
	order  []string
	inv    *inventory.Manager
}

// NewRegistry creates an empty catalog. inv may be nil.
func NewRegistry(inv *inventory.Manager) *Registry {
	return &Registry{
		emotes: make(map[string]Definition),
		inv:    inv,
	}
}

// Register adds or replaces an emote definition.
func (r *Registry) Register(def Definition) {
	if _, exists := r.emotes[def.Kind]; !exists {
		r.order = append(r.order, def.Kind)
	}
	r.emotes[def.Kind] = def

	if r.inv != nil {
		r.inv.RegisterItem(inventory.Item{
			ID:          "emote_" + def.Kind,
			Type:        inventory.TypeEmote,
			Name:        def.Name,
			Description: fmt.Sprintf("%s emote", def.Name),
			Icon:        def.Icon,
			Tier:        def.Tier,
			Cost:        def.Cost,
			Rarity:      def.Rarity,
		})
	}
}

// RegisterAll adds several definitions.
func (r *Registry) RegisterAll(defs []Definition) {
	for _, d := range defs {
		r.Register(d)
	}
}

// Get looks up an emote by kind.
func (r *Registry) Get(kind string) (Definition, bool) {
	def, ok := r.emotes[kind]
	return def, ok
}

// All returns every registered emote in registration order.
func (r *Registry) All() []Definition {
	out := make([]Definition, 0, len(r.order))
	for _, kind := range r.order {
		out = append(out, r.emotes[kind])
	}
	return out
}

// ByTier returns the emotes available at exactly the given tier.
func (r *Registry) ByTier(tier permission.Tier) []Definition {
	var out []Definition
	for _, d := range r.All() {
		if d.Tier == tier {
			out = append(out, d)
		}
	}
	return out
}

// DefaultDefinitions is the stock emote catalog.
func DefaultDefinitions() []Definition {
	return []Definition{
		{Kind: "clap", Name: "Clap", Icon: "👏", Tier: permission.TierFree, Cost: 0, Rarity: inventory.RarityCommon},
		{Kind: "heart", Name: "Heart", Icon: "❤️", Tier: permission.TierFree, Cost: 0, Rarity: inventory.RarityCommon},
		{Kind: "star", Name: "Star", Icon: "⭐", Tier: permission.TierPremium, Cost: 100, Rarity: inventory.RarityRare},
		{Kind: "fire", Name: "Fire", Icon: "🔥", Tier: permission.TierPremium, Cost: 150, Rarity: inventory.RarityRare},
		{Kind: "rocket", Name: "Rocket", Icon: "🚀", Tier: permission.TierPremium, Cost: 200, Rarity: inventory.RarityRare},
		{Kind: "trophy", Name: "Trophy", Icon: "🏆", Tier: permission.TierVIP, Cost: 500, Rarity: inventory.RarityEpic},
		{Kind: "diamond", Name: "Diamond", Icon: "💎", Tier: permission.TierVIP, Cost: 1000, Rarity: inventory.RarityEpic},
		{Kind: "crown", Name: "Crown", Icon: "👑", Tier: permission.TierVIP, Cost: 1500, Rarity: inventory.RarityLegendary},
		{Kind: "lightning", Name: "Lightning", Icon: "⚡", Tier: permission.TierSponsor, Cost: 2000, Rarity: inventory.RarityLegendary},
		{Kind: "boom", Name: "Boom", Icon: "💥", Tier: permission.TierSponsor, Cost: 2500, Rarity: inventory.RarityLegendary},
		{Kind: "sparkles", Name: "Sparkles", Icon: "✨", Tier: permission.TierSponsor, Cost: 3000, Rarity: inventory.RarityLegendary},
	}
}
