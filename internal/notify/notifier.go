/**
 * @description
 * Push notifier.
 * Persists a notification row per delivery and pushes the same payload to the
 * user's live websocket connections. Delivery is best effort: verification
 * correctness never depends on it.
 *
 * @dependencies
 * - gorm.io/gorm
 * - backend/internal/models
 * - backend/internal/ws
 */

package notify

import (
	"context"
	"encoding/json"

	"github.com/goldpulse/backend/internal/logger"
	"github.com/goldpulse/backend/internal/models"
	"github.com/goldpulse/backend/internal/ws"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Notifier struct {
	db  *gorm.DB
	hub *ws.Hub
}

func NewNotifier(db *gorm.DB, hub *ws.Hub) *Notifier {
	return &Notifier{db: db, hub: hub}
}

// SendToUser records and delivers one notification
func (n *Notifier) SendToUser(ctx context.Context, userID uuid.UUID, title, body string, data map[string]interface{}) error {
	dataJSON, err := json.Marshal(data)
	if err != nil {
		return err
	}

	row := models.Notification{
		ID:     uuid.New(),
		UserID: userID,
		Type:   models.NotificationTypePredictionVerified,
		Title:  title,
		Body:   body,
		Data:   string(dataJSON),
	}
	if err := n.db.WithContext(ctx).Create(&row).Error; err != nil {
		logger.Error("Notifier: failed to persist notification for user %s: %v", userID, err)
		return err
	}

	// Live push piggybacks on the hub; a user with no open connection just
	// finds the row later
	n.hub.SendToUser(userID, ws.Event{
		Type: ws.EventTypeNotification,
		Payload: map[string]interface{}{
			"id":    row.ID,
			"title": title,
			"body":  body,
			"data":  data,
		},
	})

	return nil
}
