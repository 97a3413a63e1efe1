package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"separation-route-service/internal/domain"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	exchangeName = "routes_topic"
	queueName    = "courier_dispatch"
)

// RabbitDispatcher publishes one dispatch notification per route so the
// courier-facing consumer can notify each deliverer that their bundle
// is finalized.
type RabbitDispatcher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

type DispatchMessage struct {
	RouteID        string `json:"route_id"`
	Color          string `json:"color"`
	AssignedToID   string `json:"assigned_to_id"`
	AssignedToName string `json:"assigned_to_name"`
	TotalPackages  int    `json:"total_packages"`
	DispatchedAt   string `json:"dispatched_at"`
}

func NewRabbitDispatcher(conn *amqp.Connection) (*RabbitDispatcher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("rabbit dispatcher: open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		exchangeName,
		"topic",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("rabbit dispatcher: declare exchange: %w", err)
	}

	q, err := ch.QueueDeclare(
		queueName,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("rabbit dispatcher: declare queue: %w", err)
	}

	err = ch.QueueBind(
		q.Name,
		"dispatch.*",
		exchangeName,
		false,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("rabbit dispatcher: bind queue: %w", err)
	}

	return &RabbitDispatcher{conn: conn, channel: ch}, nil
}

func (d *RabbitDispatcher) DispatchRoute(ctx context.Context, route *domain.Route) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	msg := DispatchMessage{
		RouteID:        route.RouteID,
		Color:          route.Color,
		AssignedToID:   route.AssignedToID,
		AssignedToName: route.AssignedToName,
		TotalPackages:  route.TotalPackages,
		DispatchedAt:   time.Now().UTC().Format(time.RFC3339),
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("dispatch route %s: encode: %w", route.RouteID, err)
	}

	err = d.channel.PublishWithContext(
		ctx,
		exchangeName,
		"dispatch."+route.RouteID,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
	if err != nil {
		return fmt.Errorf("dispatch route %s: publish: %w", route.RouteID, err)
	}

	return nil
}

func (d *RabbitDispatcher) Close() {
	if d.channel != nil {
		d.channel.Close()
	}
}
