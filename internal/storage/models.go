package storage

import "time"

// Participant statuses.
const (
	StatusPending  = "pending"
	StatusAccepted = "accepted"
	StatusRejected = "rejected"
)

type User struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	Name      string    `gorm:"size:64" json:"name"`
	Email     string    `gorm:"size:254;uniqueIndex" json:"email"`
	Password  string    `gorm:"size:72" json:"-"`
	Role      string    `gorm:"size:16;default:participant" json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

type Conference struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	Title       string    `gorm:"size:128" json:"title"`
	Datetime    time.Time `json:"datetime"`
	Duration    int       `json:"duration"`
	Description string    `json:"description"`
	HostEmail   string    `gorm:"size:254" json:"hostEmail"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Participant rows are not unique per (conference, email): manual adds and
// auto-joins may both insert, readers group by email.
type Participant struct {
	ID           uint   `gorm:"primarykey" json:"id"`
	ConferenceID uint   `gorm:"index:idx_participants_conf_email" json:"conferenceId"`
	Email        string `gorm:"size:254;index:idx_participants_conf_email" json:"email"`
	Name         string `gorm:"size:64" json:"name"`
	Status       string `gorm:"size:16;default:pending" json:"status"`
}

type SeenConference struct {
	UserID       uint `gorm:"primaryKey" json:"userId"`
	ConferenceID uint `gorm:"primaryKey" json:"conferenceId"`
}
