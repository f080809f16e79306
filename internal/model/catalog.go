package model

// Catalog identifiers
type (
	FactionID  string
	AbilityID  string
	CardTypeID string
	CardID     string
	LeaderID   string
	PowerUpID  string
)

const (
	// MaxCardPower is the highest power a single card may carry
	MaxCardPower = 20
	// MaxCardAbilities is the number of abilities a card may reference
	MaxCardAbilities = 2
)

// Faction groups cards and leaders. One faction is configured as neutral.
type Faction struct {
	ID          FactionID
	Name        string
	Description string
}

// Ability is a card ability
type Ability struct {
	ID          AbilityID
	Name        string
	Description string
}

// CardType is a card's row/type classification
type CardType struct {
	ID          CardTypeID
	Name        string
	Description string
}

// Card is a playable card from the catalog
type Card struct {
	ID         CardID
	Name       string
	FactionID  FactionID
	TypeID     CardTypeID
	AbilityIDs []AbilityID
	Power      int
}

// Leader heads a deck and belongs to exactly one faction
type Leader struct {
	ID        LeaderID
	Name      string
	FactionID FactionID
	Effect    string
}

// PowerUp is a purchasable consumable
type PowerUp struct {
	ID          PowerUpID
	Name        string
	Price       int64
	Description string
}

// Catalog is the full set of reference data loaded at startup
type Catalog struct {
	Factions  []Faction
	Abilities []Ability
	CardTypes []CardType
	Cards     []Card
	Leaders   []Leader
	PowerUps  []PowerUp
}

// Validate checks a card's field ranges
func (c *Card) Validate() error {
	var v Violations
	v.Check(c.Name != "", "card name is required")
	v.Check(c.FactionID != "", "card "+c.Name+" has no faction")
	v.Check(c.Power >= 0 && c.Power <= MaxCardPower, "card "+c.Name+" power must be between 0 and 20")
	v.Check(len(c.AbilityIDs) <= MaxCardAbilities, "card "+c.Name+" has more than 2 abilities")
	return v.Err()
}

// Validate checks a power-up's fields
func (p *PowerUp) Validate() error {
	var v Violations
	v.Check(p.Name != "", "power-up name is required")
	v.Check(p.Price >= 0, "power-up "+p.Name+" price must not be negative")
	return v.Err()
}

// TotalPower sums the power of the given cards
func TotalPower(cards []Card) int {
	total := 0
	for _, c := range cards {
		total += c.Power
	}
	return total
}

// Clone returns a deep copy of the catalog
func (c *Catalog) Clone() *Catalog {
	cards := make([]Card, len(c.Cards))
	for i, card := range c.Cards {
		card.AbilityIDs = append([]AbilityID(nil), card.AbilityIDs...)
		cards[i] = card
	}
	return &Catalog{
		Factions:  append([]Faction(nil), c.Factions...),
		Abilities: append([]Ability(nil), c.Abilities...),
		CardTypes: append([]CardType(nil), c.CardTypes...),
		Cards:     cards,
		Leaders:   append([]Leader(nil), c.Leaders...),
		PowerUps:  append([]PowerUp(nil), c.PowerUps...),
	}
}
