package lockout

import "github.com/asaskevich/EventBus"

// Publisher emits authentication outcomes onto the event bus. It decouples
// the login path from the tracker: the publisher never blocks on tracker
// processing.
type Publisher struct {
	bus EventBus.Bus
}

// NewPublisher creates a Publisher for the given bus.
func NewPublisher(bus EventBus.Bus) *Publisher {
	return &Publisher{bus: bus}
}

// Publish emits one outcome event.
func (p *Publisher) Publish(outcome Outcome) {
	p.bus.Publish(TopicAuthOutcome, outcome)
}
