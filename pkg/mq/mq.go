// Package mq RabbitMQ发布/消费封装(topic exchange)
package mq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ExchangeTopic 事件统一使用topic exchange，按routing key通配订阅
const ExchangeTopic = "topic"

// ErrClosed Publisher已关闭
var ErrClosed = errors.New("mq: publisher closed")

type publishChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher 消息发布者
// amqp.Channel不支持并发发布，内部加锁串行
type Publisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	channel  publishChannel
	exchange string
	closed   bool
}

// NewPublisher 连接RabbitMQ并声明持久化exchange
func NewPublisher(url, exchange string) (*Publisher, error) {
	conn, ch, err := dial(url, exchange)
	if err != nil {
		return nil, err
	}

	slog.Info("mq publisher ready", "exchange", exchange)
	return &Publisher{conn: conn, channel: ch, exchange: exchange}, nil
}

// Publish JSON编码后以持久化消息发布
func (p *Publisher) Publish(ctx context.Context, routingKey string, message interface{}) error {
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("消息序列化失败: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrClosed
	}

	if err := p.channel.PublishWithContext(ctx, p.exchange, routingKey, false, false, newPublishing(body)); err != nil {
		return fmt.Errorf("发布消息失败: %w", err)
	}

	slog.DebugContext(ctx, "mq message published", "routing_key", routingKey, "bytes", len(body))
	return nil
}

// Close 关闭channel和连接，可重复调用
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true

	var errs []error
	if p.channel != nil {
		errs = append(errs, p.channel.Close())
	}
	if p.conn != nil {
		errs = append(errs, p.conn.Close())
	}
	return errors.Join(errs...)
}

func newPublishing(body []byte) amqp.Publishing {
	return amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
	}
}

// Handler 消息处理函数，返回错误时消息重新入队
type Handler func(ctx context.Context, routingKey string, body []byte) error

// Consumer 消息消费者
type Consumer struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
}

// NewConsumer 声明队列并按routingKeys绑定到exchange
// queue为空时创建服务端命名的临时队列(独占、断开即删)
func NewConsumer(url, exchange, queue string, routingKeys []string) (*Consumer, error) {
	conn, ch, err := dial(url, exchange)
	if err != nil {
		return nil, err
	}

	durable, exclusive := true, false
	if queue == "" {
		durable, exclusive = false, true
	}

	q, err := ch.QueueDeclare(queue, durable, !durable, exclusive, false, nil)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("声明Queue失败: %w", err)
	}

	for _, key := range routingKeys {
		if err := ch.QueueBind(q.Name, key, exchange, false, nil); err != nil {
			_ = ch.Close()
			_ = conn.Close()
			return nil, fmt.Errorf("绑定Queue失败: %w", err)
		}
	}

	slog.Info("mq consumer ready", "queue", q.Name, "routing_keys", routingKeys)
	return &Consumer{conn: conn, channel: ch, queue: q.Name}, nil
}

// Consume 阻塞消费直到ctx取消或channel关闭
func (c *Consumer) Consume(ctx context.Context, handler Handler) error {
	if err := c.channel.Qos(1, 0, false); err != nil {
		return fmt.Errorf("设置Qos失败: %w", err)
	}

	msgs, err := c.channel.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("开始消费失败: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return errors.New("mq: delivery channel closed")
			}
			deliver(ctx, msg, handler)
		}
	}
}

func deliver(ctx context.Context, msg amqp.Delivery, handler Handler) {
	if err := handler(ctx, msg.RoutingKey, msg.Body); err != nil {
		slog.WarnContext(ctx, "mq handler failed, requeue", "routing_key", msg.RoutingKey, "error", err)
		_ = msg.Nack(false, true)
		return
	}
	_ = msg.Ack(false)
}

// Close 关闭channel和连接
func (c *Consumer) Close() error {
	var errs []error
	if c.channel != nil {
		errs = append(errs, c.channel.Close())
	}
	if c.conn != nil {
		errs = append(errs, c.conn.Close())
	}
	return errors.Join(errs...)
}

func dial(url, exchange string) (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, fmt.Errorf("连接RabbitMQ失败: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("创建Channel失败: %w", err)
	}

	if err := ch.ExchangeDeclare(exchange, ExchangeTopic, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, nil, fmt.Errorf("声明Exchange失败: %w", err)
	}

	return conn, ch, nil
}
