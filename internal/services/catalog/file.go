package catalog

import "github.com/mcoot/deckduel/internal/model"

// fileCatalog is the on-disk JSON layout of data/catalog.json
type fileCatalog struct {
	Factions []struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		Description string `json:"description"`
	} `json:"factions"`
	Abilities []struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		Description string `json:"description"`
	} `json:"abilities"`
	CardTypes []struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		Description string `json:"description"`
	} `json:"card_types"`
	Cards []struct {
		ID        string   `json:"id"`
		Name      string   `json:"name"`
		Faction   string   `json:"faction"`
		Type      string   `json:"type"`
		Abilities []string `json:"abilities"`
		Power     int      `json:"power"`
	} `json:"cards"`
	Leaders []struct {
		ID      string `json:"id"`
		Name    string `json:"name"`
		Faction string `json:"faction"`
		Effect  string `json:"effect"`
	} `json:"leaders"`
	PowerUps []struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		Price       int64  `json:"price"`
		Description string `json:"description"`
	} `json:"power_ups"`
}

func (f *fileCatalog) toModel() *model.Catalog {
	c := &model.Catalog{}
	for _, x := range f.Factions {
		c.Factions = append(c.Factions, model.Faction{ID: model.FactionID(x.ID), Name: x.Name, Description: x.Description})
	}
	for _, x := range f.Abilities {
		c.Abilities = append(c.Abilities, model.Ability{ID: model.AbilityID(x.ID), Name: x.Name, Description: x.Description})
	}
	for _, x := range f.CardTypes {
		c.CardTypes = append(c.CardTypes, model.CardType{ID: model.CardTypeID(x.ID), Name: x.Name, Description: x.Description})
	}
	for _, x := range f.Cards {
		card := model.Card{
			ID:        model.CardID(x.ID),
			Name:      x.Name,
			FactionID: model.FactionID(x.Faction),
			TypeID:    model.CardTypeID(x.Type),
			Power:     x.Power,
		}
		for _, a := range x.Abilities {
			card.AbilityIDs = append(card.AbilityIDs, model.AbilityID(a))
		}
		c.Cards = append(c.Cards, card)
	}
	for _, x := range f.Leaders {
		c.Leaders = append(c.Leaders, model.Leader{ID: model.LeaderID(x.ID), Name: x.Name, FactionID: model.FactionID(x.Faction), Effect: x.Effect})
	}
	for _, x := range f.PowerUps {
		c.PowerUps = append(c.PowerUps, model.PowerUp{ID: model.PowerUpID(x.ID), Name: x.Name, Price: x.Price, Description: x.Description})
	}
	return c
}
