package storage

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

var (
	ErrDuplicateParticipant = errors.New("participant already added to this conference")
	ErrBadStatus            = errors.New("invalid status")
)

type ParticipantService struct {
	db *gorm.DB
}

func NewParticipantService(db *gorm.DB) *ParticipantService {
	return &ParticipantService{db: db}
}

// ListByConference returns one row per email; duplicate rows from auto-joins
// collapse to the earliest id/name.
func (s *ParticipantService) ListByConference(conferenceID uint) ([]Participant, error) {
	var out []Participant
	err := s.db.Model(&Participant{}).
		Select("MIN(id) AS id, conference_id, email, MIN(name) AS name").
		Where("conference_id = ?", conferenceID).
		Group("conference_id, email").
		Scan(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *ParticipantService) Add(conferenceID uint, email, name string) (*Participant, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "Anonymous"
	}

	var existing Participant
	err := s.db.Where("conference_id = ? AND email = ?", conferenceID, email).First(&existing).Error
	if err == nil {
		return nil, ErrDuplicateParticipant
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	p := Participant{ConferenceID: conferenceID, Email: email, Name: name}
	if err := s.db.Create(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *ParticipantService) Remove(id uint) error {
	return s.db.Delete(&Participant{}, id).Error
}

func (s *ParticipantService) UpdateStatus(id uint, status string) error {
	switch status {
	case StatusPending, StatusAccepted, StatusRejected:
	default:
		return ErrBadStatus
	}
	return s.db.Model(&Participant{}).Where("id = ?", id).Update("status", status).Error
}

func (s *ParticipantService) UpdateName(id uint, name string) error {
	return s.db.Model(&Participant{}).Where("id = ?", id).Update("name", name).Error
}

// JoinedByEmail lists the conferences a user has joined.
func (s *ParticipantService) JoinedByEmail(email string) ([]Conference, error) {
	var out []Conference
	err := s.db.Model(&Participant{}).
		Select("conferences.id, conferences.title, conferences.datetime, conferences.duration, conferences.description").
		Joins("JOIN conferences ON participants.conference_id = conferences.id").
		Where("participants.email = ?", email).
		Scan(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// AutoJoin upserts the (conference, email, name) record when a participant
// joins a live room. The conference id arrives as the opaque room token;
// a token that is not a conference id is reported back to the caller, who
// treats the whole call as best-effort anyway.
func (s *ParticipantService) AutoJoin(ctx context.Context, conferenceID, email, name string) error {
	id, err := strconv.ParseUint(conferenceID, 10, 32)
	if err != nil {
		return fmt.Errorf("auto-join: room %q is not a conference id: %w", conferenceID, err)
	}

	var existing Participant
	err = s.db.WithContext(ctx).
		Where("conference_id = ? AND email = ?", uint(id), email).
		First(&existing).Error
	if err == nil {
		log.Debug().Str("module", "storage.participants").Str("email", email).Uint64("conference", id).Msg("auto-join: already recorded")
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	p := Participant{ConferenceID: uint(id), Email: email, Name: name}
	if err := s.db.WithContext(ctx).Create(&p).Error; err != nil {
		return err
	}
	log.Info().Str("module", "storage.participants").Str("email", email).Uint64("conference", id).Msg("auto-join recorded")
	return nil
}
