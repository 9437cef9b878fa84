package reportflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/petspot/petspot-backend/pkg/logger"
)

// Returned by NewController when a required capability is nil
var (
	ErrMissingService       = errors.New("reportflow: announcement service is required")
	ErrMissingPhotoMetadata = errors.New("reportflow: photo metadata capability is required")
)

// Dependencies are the capabilities a flow runs against. Geolocation and
// Clipboard may be nil.
type Dependencies struct {
	Service       AnnouncementService
	Geolocation   GeolocationCapability
	PhotoMetadata PhotoMetadataCapability
	Clipboard     ClipboardCapability
	Clock         func() time.Time
	Logger        *logger.Logger
}

// Controller routes intents to the current step and owns one flow instance.
// Effects are queued and must be read with DrainEffects or NextEffect.
type Controller struct {
	id       string
	flow     *Flow
	pipeline *Pipeline
	effects  *effectQueue
	logger   *logger.Logger

	microchip   *MicrochipForm
	photo       *PhotoForm
	description *DescriptionForm
	contact     *ContactForm
	summary     *SummaryForm
	forms       map[Step]stepForm
}

// NewController starts a new flow at the Microchip step
func NewController(deps Dependencies) (*Controller, error) {
	if deps.Service == nil {
		return nil, ErrMissingService
	}
	if deps.PhotoMetadata == nil {
		return nil, ErrMissingPhotoMetadata
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	if deps.Logger == nil {
		deps.Logger = logger.Nop()
	}

	id := uuid.NewString()
	log := deps.Logger.WithComponent("reportflow").WithFlowID(id)

	c := &Controller{
		id:      id,
		flow:    NewFlow(deps.Clock),
		effects: newEffectQueue(),
		logger:  log,
	}
	c.pipeline = NewPipeline(deps.Service, log)
	c.microchip = newMicrochipForm(c.flow, c)
	c.photo = newPhotoForm(c.flow, c, deps.PhotoMetadata, log)
	c.description = newDescriptionForm(c.flow, c, deps.Geolocation, deps.Clock, log)
	c.contact = newContactForm(c.flow, c, c.pipeline)
	c.summary = newSummaryForm(c.flow, c, deps.Clipboard, log)
	c.forms = map[Step]stepForm{
		StepMicrochip:   c.microchip,
		StepPhoto:       c.photo,
		StepDescription: c.description,
		StepContact:     c.contact,
		StepSummary:     c.summary,
	}

	c.forms[FirstStep()].onEnter()
	log.Debug().Msg("report flow started")
	return c, nil
}

// ID identifies this flow instance in logs
func (c *Controller) ID() string {
	return c.id
}

// Dispatch handles one intent. Intents the current step does not know return
// ErrUnsupportedIntent. Validation and submission failures are reported
// through step state and effects, not as errors.
func (c *Controller) Dispatch(ctx context.Context, in Intent) error {
	current := c.CurrentStep()

	switch in := in.(type) {
	case NavigateNext:
		if _, ok := NextStep(current); ok {
			c.advance(current)
		}
		return nil
	case NavigateBack:
		c.retreat(current)
		return nil
	case Submit:
		if current != StepContact {
			return fmt.Errorf("%w: submit on %s step", ErrUnsupportedIntent, current)
		}
		return c.contact.handle(ctx, in)
	case UpdateCurrentStep:
		return c.jump(current, in.Step)
	}

	if err := c.forms[current].handle(ctx, in); err != nil {
		if errors.Is(err, ErrUnsupportedIntent) {
			return fmt.Errorf("%w: %T on %s step", ErrUnsupportedIntent, in, current)
		}
		return err
	}
	return nil
}

// CurrentStep returns the visible step
func (c *Controller) CurrentStep() Step {
	return c.flow.Snapshot().CurrentStep
}

// Snapshot returns the flow's collected data
func (c *Controller) Snapshot() Snapshot {
	return c.flow.Snapshot()
}

// IsSubmitting reports whether a submission is running
func (c *Controller) IsSubmitting() bool {
	return c.pipeline.IsSubmitting()
}

// DrainEffects removes and returns every queued effect in order
func (c *Controller) DrainEffects() []Effect {
	return c.effects.drain()
}

// NextEffect blocks until an effect is queued or ctx is done
func (c *Controller) NextEffect(ctx context.Context) (Effect, error) {
	return c.effects.next(ctx)
}

// Wait blocks until background photo extraction has finished
func (c *Controller) Wait() {
	c.photo.Wait()
}

// Close stops background work. The controller must not be used afterwards.
func (c *Controller) Close() {
	c.photo.Close()
}

// MicrochipState returns the Microchip step's view
func (c *Controller) MicrochipState() MicrochipState {
	return c.microchip.State()
}

// PhotoState returns the Photo step's view
func (c *Controller) PhotoState() PhotoState {
	return c.photo.State()
}

// DescriptionState returns the Description step's view
func (c *Controller) DescriptionState() DescriptionState {
	return c.description.State()
}

// ContactState returns the Contact step's view
func (c *Controller) ContactState() ContactState {
	return c.contact.State()
}

// SummaryState returns the Summary step's view
func (c *Controller) SummaryState() SummaryState {
	return c.summary.State()
}

func (c *Controller) advance(from Step) {
	to, ok := NextStep(from)
	if !ok {
		return
	}
	c.moveTo(to)
	c.emit(NavigatedForward{From: from, To: to})
}

func (c *Controller) retreat(from Step) {
	to, ok := PreviousStep(from)
	if !ok {
		c.exit()
		return
	}
	c.moveTo(to)
	c.emit(NavigatedBack{From: from, To: to})
}

func (c *Controller) jump(from, to Step) error {
	if to.index() < 0 {
		return fmt.Errorf("%w: unknown step %d", ErrUnsupportedIntent, int(to))
	}
	if to == from {
		return nil
	}
	c.moveTo(to)
	if to.index() > from.index() {
		c.emit(NavigatedForward{From: from, To: to})
	} else {
		c.emit(NavigatedBack{From: from, To: to})
	}
	return nil
}

func (c *Controller) moveTo(step Step) {
	c.flow.UpdateCurrentStep(step)
	c.forms[step].onEnter()
	c.logger.Debug().Str("step", step.String()).Msg("step entered")
}

// exit abandons or completes the flow and starts over with empty state
func (c *Controller) exit() {
	c.photo.abandon()
	c.flow.Reset()
	for _, step := range stepOrder {
		c.forms[step].onEnter()
	}
	c.emit(ExitFlow{})
	c.logger.Debug().Msg("report flow exited")
}

func (c *Controller) emit(e Effect) {
	c.effects.push(e)
}
