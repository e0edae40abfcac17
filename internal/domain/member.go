package domain

import "time"

// Member is a family member (human or pet) tasks can be assigned to.
// Members are managed outside the engine; only the read surface is used
// here.
type Member struct {
	ID        string
	Name      string
	Role      string // e.g. "adult", "child", "pet"
	CreatedAt time.Time
}
