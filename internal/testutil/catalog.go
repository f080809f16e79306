package testutil

import (
	"fmt"

	"github.com/mcoot/deckduel/internal/model"
)

// Fixture catalog identifiers
const (
	FactionNorth     model.FactionID = "faction-north"
	FactionNilfgaard model.FactionID = "faction-nilfgaard"
	FactionNeutral   model.FactionID = "faction-neutral"

	LeaderFoltest model.LeaderID = "leader-foltest"
	LeaderEmhyr   model.LeaderID = "leader-emhyr"
	LeaderGaunter model.LeaderID = "leader-gaunter"

	NorthPrefix     = "Redanian Soldier"
	NilfgaardPrefix = "Nilfgaardian Knight"
	NeutralPrefix   = "Wandering Bard"
)

// Catalog returns a small catalog: 25 Northern Realms cards (power 1..10
// repeating), 25 Nilfgaard cards (power 5), 10 Neutral cards (power 2), one
// leader per faction and two power-ups.
func Catalog() *model.Catalog {
	c := &model.Catalog{
		Factions: []model.Faction{
			{ID: FactionNorth, Name: "Northern Realms"},
			{ID: FactionNilfgaard, Name: "Nilfgaard"},
			{ID: FactionNeutral, Name: "neutral"},
		},
		Abilities: []model.Ability{{ID: "ability-spy", Name: "Spy"}},
		CardTypes: []model.CardType{{ID: "type-melee", Name: "Melee"}},
		Leaders: []model.Leader{
			{ID: LeaderFoltest, Name: "King Foltest", FactionID: FactionNorth},
			{ID: LeaderEmhyr, Name: "Emhyr var Emreis", FactionID: FactionNilfgaard},
			{ID: LeaderGaunter, Name: "Gaunter O'Dimm", FactionID: FactionNeutral},
		},
		PowerUps: []model.PowerUp{
			{ID: "powerup-horn", Name: "Commander's Horn", Price: 1500},
			{ID: "powerup-scorch", Name: "Scorch", Price: 3000},
		},
	}
	for i := 1; i <= 25; i++ {
		c.Cards = append(c.Cards, model.Card{
			ID:        model.CardID(fmt.Sprintf("card-north-%d", i)),
			Name:      fmt.Sprintf("%s %d", NorthPrefix, i),
			FactionID: FactionNorth,
			TypeID:    "type-melee",
			Power:     (i-1)%10 + 1,
		})
		c.Cards = append(c.Cards, model.Card{
			ID:        model.CardID(fmt.Sprintf("card-nilfgaard-%d", i)),
			Name:      fmt.Sprintf("%s %d", NilfgaardPrefix, i),
			FactionID: FactionNilfgaard,
			TypeID:    "type-melee",
			Power:     5,
		})
	}
	for i := 1; i <= 10; i++ {
		c.Cards = append(c.Cards, model.Card{
			ID:         model.CardID(fmt.Sprintf("card-neutral-%d", i)),
			Name:       fmt.Sprintf("%s %d", NeutralPrefix, i),
			FactionID:  FactionNeutral,
			TypeID:     "type-melee",
			AbilityIDs: []model.AbilityID{"ability-spy"},
			Power:      2,
		})
	}
	return c
}

// CardNames returns "<prefix> from" .. "<prefix> to", inclusive
func CardNames(prefix string, from, to int) []string {
	var names []string
	for i := from; i <= to; i++ {
		names = append(names, fmt.Sprintf("%s %d", prefix, i))
	}
	return names
}
