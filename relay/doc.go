// Package relay forwards events dispatched by an emitter to a RabbitMQ
// exchange.
//
// Every bound event is wrapped in an Envelope, encoded as JSON and published
// with the event name as routing key:
//
//	r := relay.New(ch, "events", relay.WithLogger(logger))
//	r.Bind(e, "orders.created", "orders.deleted")
//
// Binding to an intercepted emitter relays the payload produced by its
// interceptor chain, and only for dispatches the chain lets through.
package relay
