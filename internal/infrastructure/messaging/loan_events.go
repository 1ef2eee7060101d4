// Package messaging 借阅事件的MQ适配
package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/xiebiao/library/internal/application/loan"
	"github.com/xiebiao/library/pkg/metrics"
	"github.com/xiebiao/library/pkg/tracing"
)

// LoanRoutingKeys 订阅全部借阅事件
var LoanRoutingKeys = []string{"loan.*"}

// Publisher 由*mq.Publisher实现
type Publisher interface {
	Publish(ctx context.Context, routingKey string, message interface{}) error
}

// LoanEventPublisher 以事件类型作为routing key发布借阅事件
type LoanEventPublisher struct {
	publisher Publisher
	metrics   *metrics.Metrics
}

// NewLoanEventPublisher 创建事件发布适配器
func NewLoanEventPublisher(publisher Publisher, m *metrics.Metrics) *LoanEventPublisher {
	return &LoanEventPublisher{publisher: publisher, metrics: m}
}

// PublishLoanEvent 实现loan.EventPublisher
func (p *LoanEventPublisher) PublishLoanEvent(ctx context.Context, event loan.Event) error {
	ctx, span := tracing.StartSpan(ctx, "mq.publish "+event.Type)
	defer span.End()

	err := p.publisher.Publish(ctx, event.Type, event)
	p.metrics.ObservePublish(event.Type, err)
	if err != nil {
		tracing.RecordError(span, err)
		return fmt.Errorf("发布借阅事件失败: %w", err)
	}
	return nil
}

// LoanEventLogger 消费端：把借阅事件写入日志
type LoanEventLogger struct {
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewLoanEventLogger logger为nil时使用slog.Default()
func NewLoanEventLogger(logger *slog.Logger, m *metrics.Metrics) *LoanEventLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoanEventLogger{logger: logger, metrics: m}
}

// Handle 签名与mq.Handler一致
// 无法解析的消息记录后丢弃，返回错误会导致无限重新入队
func (l *LoanEventLogger) Handle(ctx context.Context, routingKey string, body []byte) error {
	l.metrics.ObserveConsume(routingKey)

	var event loan.Event
	if err := json.Unmarshal(body, &event); err != nil {
		l.logger.WarnContext(ctx, "malformed loan event dropped", "routing_key", routingKey, "error", err)
		return nil
	}

	l.logger.InfoContext(ctx, "loan event",
		"type", event.Type,
		"transaction_id", event.TransactionID,
		"user_id", event.UserID,
		"book_id", event.BookID,
		"due_date", event.DueDate,
		"returned", event.ReturnDate != nil,
	)
	return nil
}
