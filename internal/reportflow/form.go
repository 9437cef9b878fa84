package reportflow

import "context"

// navigator is the controller surface the forms drive. Forms must not hold
// their own lock while calling it.
type navigator interface {
	advance(from Step)
	retreat(from Step)
	exit()
	emit(e Effect)
}

// stepForm is the per-step controller. onEnter hydrates the local draft from
// the flow; handle dispatches one of the step's intents.
type stepForm interface {
	onEnter()
	handle(ctx context.Context, in Intent) error
}

func toast(nav navigator, message string) {
	nav.emit(ShowToast{Message: message})
}
