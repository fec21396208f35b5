package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/VK-10/AI-fitness-App/internal/domain"
	"github.com/VK-10/AI-fitness-App/internal/platform/events"
	"github.com/VK-10/AI-fitness-App/internal/recommend"
)

// RecommendationSaver persists generated recommendations.
type RecommendationSaver interface {
	Save(ctx context.Context, rec domain.Recommendation) error
}

// RecommendationGenerator turns an activity event into a recommendation.
type RecommendationGenerator interface {
	Generate(events.ActivityTracked) (domain.Recommendation, error)
}

// RecommendationHandler generates and stores a recommendation for each
// activity.tracked event. Other event types are ignored.
type RecommendationHandler struct {
	generator RecommendationGenerator
	store     RecommendationSaver
	logger    *log.Logger
}

// NewRecommendationHandler constructs a RecommendationHandler.
func NewRecommendationHandler(generator RecommendationGenerator, store RecommendationSaver, logger *log.Logger) *RecommendationHandler {
	if logger == nil {
		logger = log.New(log.Writer(), "[recommendation] ", log.LstdFlags|log.Lmsgprefix)
	}
	return &RecommendationHandler{generator: generator, store: store, logger: logger}
}

// Handle processes one message. Payloads that can never produce a
// recommendation are logged and acknowledged; storage failures are returned
// so the processor retries the message.
func (h *RecommendationHandler) Handle(ctx context.Context, msg Message) error {
	if msg.EventType != events.EventActivityTracked {
		return nil
	}

	var evt events.ActivityTracked
	if err := json.Unmarshal(msg.Payload, &evt); err != nil {
		h.logger.Printf("discarding undecodable activity event at offset %d: %v", msg.Offset, err)
		recordRecommendation("invalid")
		return nil
	}
	if evt.TenantID == "" {
		evt.TenantID = msg.TenantID
	}

	rec, err := h.generator.Generate(evt)
	if err != nil {
		h.logger.Printf("failed to generate recommendation for activity %s: %v", evt.ActivityID, err)
		if errors.Is(err, recommend.ErrIncompleteActivity) {
			recordRecommendation("invalid")
			return nil
		}
		recordRecommendation("failed")
		return err
	}

	if err := h.store.Save(ctx, rec); err != nil {
		h.logger.Printf("failed to save recommendation for activity %s: %v", evt.ActivityID, err)
		recordRecommendation("failed")
		return fmt.Errorf("save recommendation for activity %s: %w", evt.ActivityID, err)
	}

	recordRecommendation("saved")
	return nil
}
