package storage

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

type ConferenceService struct {
	db *gorm.DB
}

func NewConferenceService(db *gorm.DB) *ConferenceService {
	return &ConferenceService{db: db}
}

func (s *ConferenceService) Create(title string, datetime time.Time, duration int, description, hostEmail string) (*Conference, error) {
	conf := Conference{
		Title:       title,
		Datetime:    datetime,
		Duration:    duration,
		Description: description,
		HostEmail:   hostEmail,
	}
	if err := s.db.Create(&conf).Error; err != nil {
		return nil, err
	}
	return &conf, nil
}

func (s *ConferenceService) All() ([]Conference, error) {
	var out []Conference
	if err := s.db.Order("datetime DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (s *ConferenceService) Get(id uint) (*Conference, error) {
	var conf Conference
	if err := s.db.First(&conf, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &conf, nil
}

func (s *ConferenceService) Update(id uint, title string, datetime time.Time, duration int, description string) error {
	return s.db.Model(&Conference{}).Where("id = ?", id).Updates(map[string]any{
		"title":       title,
		"datetime":    datetime,
		"duration":    duration,
		"description": description,
	}).Error
}

func (s *ConferenceService) Delete(id uint) error {
	return s.db.Delete(&Conference{}, id).Error
}
