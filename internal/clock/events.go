package clock

import (
	"github.com/dokzlo13/ledclock/internal/eventbus"
	"github.com/dokzlo13/ledclock/internal/transition"
)

// TransitionPublisher forwards engine events to the bus.
func TransitionPublisher(pub Publisher) transition.Observer {
	return func(ev transition.Event) {
		switch ev.Kind {
		case transition.EventTransitionStarted:
			pub.Publish(eventbus.Event{
				Type: eventbus.EventTypeTransitionStarted,
				Time: ev.At,
				Data: map[string]interface{}{
					"from": ev.From.Hex(),
					"to":   ev.To.Hex(),
				},
			})
		case transition.EventTransitionCompleted:
			pub.Publish(eventbus.Event{
				Type: eventbus.EventTypeTransitionCompleted,
				Time: ev.At,
				Data: map[string]interface{}{
					"color": ev.To.Hex(),
				},
			})
		}
	}
}
