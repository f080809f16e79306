package postgres

import (
	"time"

	"gorm.io/gorm"

	"github.com/mcoot/deckduel/internal/model"
)

// Table rows. Timestamps come from the injected clock, so gorm's automatic
// time tracking is switched off.

type userRow struct {
	ID          string                  `gorm:"primaryKey;type:varchar(64)"`
	Username    string                  `gorm:"type:varchar(64);not null;uniqueIndex"`
	Role        string                  `gorm:"type:varchar(16);not null"`
	Balance     int64                   `gorm:"not null"`
	PlayCredits int64                   `gorm:"not null"`
	GamesPlayed int                     `gorm:"not null"`
	GamesWon    int                     `gorm:"not null"`
	WinRate     float64                 `gorm:"not null"`
	Inventory   map[model.PowerUpID]int `gorm:"serializer:json;type:text"`
	Version     int64                   `gorm:"not null"`
	CreatedAt   time.Time               `gorm:"not null;autoCreateTime:false"`
	UpdatedAt   time.Time               `gorm:"not null;autoUpdateTime:false"`
	DeletedAt   gorm.DeletedAt          `gorm:"index"`
}

func (userRow) TableName() string { return "users" }

type credentialRow struct {
	UserID       string    `gorm:"primaryKey;type:varchar(64)"`
	Username     string    `gorm:"type:varchar(64);not null;uniqueIndex"`
	PasswordHash string    `gorm:"not null"`
	CreatedAt    time.Time `gorm:"autoCreateTime:false"`
}

func (credentialRow) TableName() string { return "credentials" }

type factionRow struct {
	ID          string `gorm:"primaryKey;type:varchar(64)"`
	Name        string `gorm:"not null"`
	Description string
}

func (factionRow) TableName() string { return "factions" }

type abilityRow struct {
	ID          string `gorm:"primaryKey;type:varchar(64)"`
	Name        string `gorm:"not null"`
	Description string
}

func (abilityRow) TableName() string { return "abilities" }

type cardTypeRow struct {
	ID          string `gorm:"primaryKey;type:varchar(64)"`
	Name        string `gorm:"not null"`
	Description string
}

func (cardTypeRow) TableName() string { return "card_types" }

type cardRow struct {
	ID         string            `gorm:"primaryKey;type:varchar(64)"`
	Name       string            `gorm:"not null;index"`
	FactionID  string            `gorm:"type:varchar(64);not null;index"`
	TypeID     string            `gorm:"type:varchar(64)"`
	AbilityIDs []model.AbilityID `gorm:"serializer:json;type:text"`
	Power      int               `gorm:"not null"`
}

func (cardRow) TableName() string { return "cards" }

type leaderRow struct {
	ID        string `gorm:"primaryKey;type:varchar(64)"`
	Name      string `gorm:"not null;index"`
	FactionID string `gorm:"type:varchar(64);not null"`
	Effect    string
}

func (leaderRow) TableName() string { return "leaders" }

type powerUpRow struct {
	ID          string `gorm:"primaryKey;type:varchar(64)"`
	Name        string `gorm:"not null;index"`
	Price       int64  `gorm:"not null"`
	Description string
}

func (powerUpRow) TableName() string { return "power_ups" }

type deckRow struct {
	ID         string         `gorm:"primaryKey;type:varchar(64)"`
	Name       string         `gorm:"not null;uniqueIndex:idx_decks_owner_name"`
	OwnerID    string         `gorm:"type:varchar(64);not null;uniqueIndex:idx_decks_owner_name"`
	CardIDs    []model.CardID `gorm:"serializer:json;type:text"`
	LeaderID   string         `gorm:"type:varchar(64);not null"`
	FactionID  string         `gorm:"type:varchar(64);not null"`
	TotalCards int            `gorm:"not null"`
	CreatedAt  time.Time      `gorm:"autoCreateTime:false"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime:false"`
}

func (deckRow) TableName() string { return "decks" }

type matchRow struct {
	ID          string         `gorm:"primaryKey;type:varchar(64)"`
	Player1ID   string         `gorm:"type:varchar(64);not null;index"`
	Player2ID   string         `gorm:"type:varchar(64);not null;index"`
	TotalPower1 int            `gorm:"not null"`
	TotalPower2 int            `gorm:"not null"`
	Result      string         `gorm:"type:varchar(16);not null"`
	WinnerID    string         `gorm:"type:varchar(64)"`
	CreatedAt   time.Time      `gorm:"index;autoCreateTime:false"`
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}

func (matchRow) TableName() string { return "history_plays" }

type topupRow struct {
	ID        string    `gorm:"primaryKey;type:varchar(64)"`
	UserID    string    `gorm:"type:varchar(64);not null;index"`
	Amount    int64     `gorm:"not null"`
	CreatedAt time.Time `gorm:"index;autoCreateTime:false"`
}

func (topupRow) TableName() string { return "history_topups" }

type transactionRow struct {
	ID        string               `gorm:"primaryKey;type:varchar(64)"`
	UserID    string               `gorm:"type:varchar(64);not null;index"`
	Total     int64                `gorm:"not null"`
	CreatedAt time.Time            `gorm:"index;autoCreateTime:false"`
	Lines     []transactionLineRow `gorm:"foreignKey:TransactionID;constraint:OnDelete:CASCADE"`
}

func (transactionRow) TableName() string { return "transactions" }

type transactionLineRow struct {
	ID            uint   `gorm:"primaryKey;autoIncrement"`
	TransactionID string `gorm:"type:varchar(64);not null;index"`
	PowerUpID     string `gorm:"type:varchar(64);not null"`
	PowerUpName   string `gorm:"not null"`
	Quantity      int    `gorm:"not null"`
	UnitPrice     int64  `gorm:"not null"`
}

func (transactionLineRow) TableName() string { return "transaction_lines" }

// allRows lists every table for AutoMigrate
func allRows() []any {
	return []any{
		&userRow{}, &credentialRow{},
		&factionRow{}, &abilityRow{}, &cardTypeRow{}, &cardRow{}, &leaderRow{}, &powerUpRow{},
		&deckRow{},
		&matchRow{}, &topupRow{}, &transactionRow{}, &transactionLineRow{},
	}
}

// Conversions

func toUserRow(u *model.User) userRow {
	row := userRow{
		ID:          string(u.ID),
		Username:    u.Username,
		Role:        string(u.Role),
		Balance:     u.Balance,
		PlayCredits: u.PlayCredits,
		GamesPlayed: u.GamesPlayed,
		GamesWon:    u.GamesWon,
		WinRate:     u.WinRate,
		Inventory:   u.Inventory,
		Version:     u.Version,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
	if row.Inventory == nil {
		row.Inventory = map[model.PowerUpID]int{}
	}
	return row
}

func (r *userRow) toModel() *model.User {
	u := &model.User{
		ID:          model.UserID(r.ID),
		Username:    r.Username,
		Role:        model.Role(r.Role),
		Balance:     r.Balance,
		PlayCredits: r.PlayCredits,
		GamesPlayed: r.GamesPlayed,
		GamesWon:    r.GamesWon,
		WinRate:     r.WinRate,
		Inventory:   r.Inventory,
		Version:     r.Version,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if u.Inventory == nil {
		u.Inventory = map[model.PowerUpID]int{}
	}
	if r.DeletedAt.Valid {
		t := r.DeletedAt.Time
		u.DeletedAt = &t
	}
	return u
}

func toDeckRow(d *model.Deck) deckRow {
	return deckRow{
		ID:         string(d.ID),
		Name:       d.Name,
		OwnerID:    string(d.OwnerID),
		CardIDs:    d.CardIDs,
		LeaderID:   string(d.LeaderID),
		FactionID:  string(d.FactionID),
		TotalCards: d.TotalCards,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
}

func (r *deckRow) toModel() *model.Deck {
	return &model.Deck{
		ID:         model.DeckID(r.ID),
		Name:       r.Name,
		OwnerID:    model.UserID(r.OwnerID),
		CardIDs:    r.CardIDs,
		LeaderID:   model.LeaderID(r.LeaderID),
		FactionID:  model.FactionID(r.FactionID),
		TotalCards: r.TotalCards,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

func toMatchRow(m *model.HistoryPlay) matchRow {
	return matchRow{
		ID:          string(m.ID),
		Player1ID:   string(m.Player1ID),
		Player2ID:   string(m.Player2ID),
		TotalPower1: m.TotalPower1,
		TotalPower2: m.TotalPower2,
		Result:      string(m.Result),
		WinnerID:    string(m.WinnerID),
		CreatedAt:   m.CreatedAt,
	}
}

func (r *matchRow) toModel() *model.HistoryPlay {
	return &model.HistoryPlay{
		ID:          model.MatchID(r.ID),
		Player1ID:   model.UserID(r.Player1ID),
		Player2ID:   model.UserID(r.Player2ID),
		TotalPower1: r.TotalPower1,
		TotalPower2: r.TotalPower2,
		Result:      model.MatchResult(r.Result),
		WinnerID:    model.UserID(r.WinnerID),
		CreatedAt:   r.CreatedAt,
	}
}

func toTransactionRow(t *model.Transaction) transactionRow {
	row := transactionRow{
		ID:        string(t.ID),
		UserID:    string(t.UserID),
		Total:     t.Total,
		CreatedAt: t.CreatedAt,
	}
	for _, l := range t.Lines {
		row.Lines = append(row.Lines, transactionLineRow{
			TransactionID: string(t.ID),
			PowerUpID:     string(l.PowerUpID),
			PowerUpName:   l.PowerUpName,
			Quantity:      l.Quantity,
			UnitPrice:     l.UnitPrice,
		})
	}
	return row
}

func (r *transactionRow) toModel() *model.Transaction {
	t := &model.Transaction{
		ID:        model.TransactionID(r.ID),
		UserID:    model.UserID(r.UserID),
		Total:     r.Total,
		CreatedAt: r.CreatedAt,
	}
	for _, l := range r.Lines {
		t.Lines = append(t.Lines, model.TransactionLine{
			PowerUpID:   model.PowerUpID(l.PowerUpID),
			PowerUpName: l.PowerUpName,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
		})
	}
	return t
}
