package rabbitmq

import (
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ExchangeDeclarer is the subset of *amqp.Channel needed to declare exchanges
type ExchangeDeclarer interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
}

// ExchangeDeclaration defines an exchange to be declared
type ExchangeDeclaration struct {
	Name       string
	Type       string
	Durable    bool
	AutoDelete bool
	Arguments  amqp.Table
}

// DeclareExchange declares the exchange; Type defaults to topic
func DeclareExchange(ch ExchangeDeclarer, exchange ExchangeDeclaration) error {
	if exchange.Name == "" {
		return &TopologyError{
			Component: "exchange",
			Op:        "declare",
			Err:       ErrInvalidTopology,
			Timestamp: time.Now(),
		}
	}

	kind := exchange.Type
	if kind == "" {
		kind = amqp.ExchangeTopic
	}

	if err := ch.ExchangeDeclare(
		exchange.Name,
		kind,
		exchange.Durable,
		exchange.AutoDelete,
		false, // internal
		false, // no-wait
		exchange.Arguments,
	); err != nil {
		return &TopologyError{
			Component: "exchange",
			Name:      exchange.Name,
			Op:        "declare",
			Err:       err,
			Timestamp: time.Now(),
		}
	}

	return nil
}
