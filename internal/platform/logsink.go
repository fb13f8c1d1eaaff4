package platform

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/domain"
)

// LogSink is a Platform implementation that only logs. It lets the service
// run without a chat backend attached: channels are synthetic references and
// notifications land in the structured log.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink returns a log-only platform.
func NewLogSink(logger *zap.Logger) *LogSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSink{logger: logger}
}

// CreateConversationSurface returns a generated channel reference.
func (s *LogSink) CreateConversationSurface(ctx context.Context, parentCategory string, rules VisibilityRules) (string, error) {
	channelID := "chan-" + uuid.NewString()
	s.logger.Info("conversation surface created",
		zap.String("channel_id", channelID),
		zap.String("parent_category", parentCategory),
		zap.String("owner_id", rules.OwnerID))
	return channelID, nil
}

// Notify logs the structured message.
func (s *LogSink) Notify(ctx context.Context, target string, msg Message) error {
	fields := []zap.Field{
		zap.String("target", target),
		zap.String("title", msg.Title),
		zap.String("severity", string(msg.Severity)),
	}
	if msg.Attachment != nil {
		fields = append(fields, zap.String("attachment", msg.Attachment.Name),
			zap.Int("attachment_bytes", len(msg.Attachment.Data)))
	}
	s.logger.Info("notify", fields...)
	return nil
}

// FetchRecentMessages returns nothing; transcript builders fall back to the
// messages persisted on the ticket.
func (s *LogSink) FetchRecentMessages(ctx context.Context, channelID string, limit int) ([]domain.MessageRecord, error) {
	return nil, nil
}
