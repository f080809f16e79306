package model

import "time"

// UserID uniquely identifies a user across the system
type UserID string

// Role is the authorization role of a user
type Role string

const (
	RolePlayer Role = "player"
	RoleAdmin  Role = "admin"
)

// User holds a player's currency balances, statistics and power-up inventory.
// Mutated only through the ledger; Version guards every write.
type User struct {
	ID          UserID
	Username    string // unique, immutable
	Role        Role
	Balance     int64 // currency units, never negative
	PlayCredits int64 // consumed one per match
	GamesPlayed int
	GamesWon    int
	WinRate     float64 // percentage, derived from GamesPlayed/GamesWon
	Inventory   map[PowerUpID]int
	Version     int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   *time.Time // soft delete, users are never removed
}

// Credential holds login data for a user.
// Stored separately so password hashes never travel with the User record.
type Credential struct {
	UserID       UserID
	Username     string
	PasswordHash string // bcrypt hash
	CreatedAt    time.Time
}

// IsAdmin reports whether the user has the admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// GamesLost is implied by GamesPlayed and GamesWon (draws count as not won)
func (u *User) GamesLost() int {
	return u.GamesPlayed - u.GamesWon
}

// RecordGame counts a finished match and recomputes the win rate
func (u *User) RecordGame(won bool) {
	u.GamesPlayed++
	if won {
		u.GamesWon++
	}
	u.WinRate = WinRate(u.GamesPlayed, u.GamesWon)
}

// Clone returns a deep copy so callers can mutate without touching shared state
func (u *User) Clone() *User {
	c := *u
	c.Inventory = make(map[PowerUpID]int, len(u.Inventory))
	for id, qty := range u.Inventory {
		c.Inventory[id] = qty
	}
	if u.DeletedAt != nil {
		t := *u.DeletedAt
		c.DeletedAt = &t
	}
	return &c
}

// WinRate returns won/played as a percentage, 0 when nothing was played
func WinRate(played, won int) float64 {
	if played == 0 {
		return 0
	}
	return float64(won) / float64(played) * 100
}
