package service

import (
	"context"
	"time"

	"github.com/danngalann/astroweather/internal/mqtt"
)

const invalidateTimeout = 5 * time.Second

// Register hooks cache invalidation onto refresh notifications.
func (s *Service) Register(subscriber mqtt.RefreshSubscriber) {
	subscriber.SetMessageHandler(func(msg mqtt.RefreshMessage) error {
		s.logger.Debug("processing refresh notification",
			"slug", msg.Slug,
			"fetched_at", msg.FetchedAt,
		)

		ctx, cancel := context.WithTimeout(context.Background(), invalidateTimeout)
		defer cancel()

		if err := s.Invalidate(ctx, msg.Slug); err != nil {
			s.logger.Error("failed to invalidate weather cache",
				"slug", msg.Slug,
				"error", err,
			)
			return err
		}
		return nil
	})
}
