package services

import (
	"time"

	"github.com/baharkarakas/betzone-api/internal/models"
)

// Actor is the admin performing a mutation.
type Actor struct {
	ID        string
	RequestID string
}

func (a Actor) record(au Auditor, action, entityType, entityID string, details map[string]any) {
	if au == nil {
		return
	}
	au.Record(models.AuditEvent{
		ActorID:    a.ID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Details:    details,
		RequestID:  a.RequestID,
		CreatedAt:  time.Now().UTC(),
	})
}
