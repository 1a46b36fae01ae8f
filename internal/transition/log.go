package transition

import (
	"github.com/rs/zerolog/log"
)

// LogObserver logs transition starts and completions.
func LogObserver() Observer {
	return func(ev Event) {
		switch ev.Kind {
		case EventTransitionStarted:
			log.Info().
				Str("from", ev.From.String()).
				Str("to", ev.To.String()).
				Msg("Starting color transition")
		case EventTransitionCompleted:
			log.Info().
				Str("color", ev.To.String()).
				Msg("Color transition complete")
		}
	}
}
