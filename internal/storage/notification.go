package storage

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type NotificationService struct {
	db *gorm.DB
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{db: db}
}

// UpcomingConference is the notification view of a conference.
type UpcomingConference struct {
	ID       uint      `json:"id"`
	Title    string    `json:"title"`
	Datetime time.Time `json:"datetime"`
}

// UnseenUpcoming lists future conferences the user has not marked seen.
func (s *NotificationService) UnseenUpcoming(userID uint, now time.Time) ([]UpcomingConference, error) {
	var out []UpcomingConference
	err := s.db.Model(&Conference{}).
		Select("conferences.id, conferences.title, conferences.datetime").
		Joins("LEFT JOIN seen_conferences ON conferences.id = seen_conferences.conference_id AND seen_conferences.user_id = ?", userID).
		Where("conferences.datetime > ? AND seen_conferences.conference_id IS NULL", now).
		Scan(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// MarkSeen records the conferences as seen. Idempotent: replays are ignored.
func (s *NotificationService) MarkSeen(userID uint, conferenceIDs []uint) error {
	if len(conferenceIDs) == 0 {
		return nil
	}
	rows := make([]SeenConference, 0, len(conferenceIDs))
	for _, id := range conferenceIDs {
		rows = append(rows, SeenConference{UserID: userID, ConferenceID: id})
	}
	return s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
}
