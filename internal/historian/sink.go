package historian

import (
	"context"

	"github.com/google/uuid"
	"github.com/jason-s-yu/uno/internal/models"
	"github.com/sirupsen/logrus"
)

// LogSink writes every record and status change to a logger.
type LogSink struct {
	Logger *logrus.Logger
}

func (s LogSink) StoreActions(_ context.Context, records []models.ActionRecord) error {
	for _, rec := range records {
		s.Logger.WithFields(logrus.Fields{
			"game_id":      rec.GameID,
			"action_index": rec.ActionIndex,
			"actor":        rec.ActorUserID,
			"action":       rec.ActionType,
			"payload":      rec.ActionPayload,
		}).Info("Game action")
	}
	return nil
}

func (s LogSink) MarkFinished(_ context.Context, gameID uuid.UUID, status Status) error {
	s.Logger.WithFields(logrus.Fields{"game_id": gameID, "status": status}).Info("Game finished")
	return nil
}
