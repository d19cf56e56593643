// internal/services/event_service.go
package services

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/ipforge/ipforge-backend/internal/models"
	"github.com/ipforge/ipforge-backend/internal/utils"
)

// EventService persists the registry's observable events and mirrors them to
// the structured log. Emission happens after the owning operation commits;
// an event row is a notification, not part of the operation's failure domain.
type EventService struct {
	db *gorm.DB
}

func NewEventService(db *gorm.DB) *EventService {
	return &EventService{db: db}
}

func (s *EventService) Emit(eventType models.EventType, payload map[string]interface{}) {
	event := &models.ChainEvent{
		Type:    eventType,
		Payload: models.JSONB(payload),
	}

	if err := s.db.Create(event).Error; err != nil {
		logrus.WithError(err).WithField("type", eventType).Error("Failed to persist event")
	}

	fields := logrus.Fields{"event": string(eventType)}
	for k, v := range payload {
		fields[k] = v
	}
	logrus.WithFields(fields).Info("Registry event")
}

func (s *EventService) List(params utils.PaginationParams, eventType *models.EventType) ([]models.ChainEvent, int64, error) {
	query := s.db.Model(&models.ChainEvent{})

	if eventType != nil {
		query = query.Where("type = ?", *eventType)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count events: %w", err)
	}

	allowedSortFields := []string{"created_at", "type"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var events []models.ChainEvent
	if err := query.Find(&events).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch events: %w", err)
	}

	return events, total, nil
}
