package reportflow

// Step is one stage of the report flow
type Step int

const (
	StepMicrochip Step = iota
	StepPhoto
	StepDescription
	StepContact
	StepSummary
)

// stepOrder is the fixed linear order of the flow
var stepOrder = []Step{StepMicrochip, StepPhoto, StepDescription, StepContact, StepSummary}

// Steps returns the steps in flow order
func Steps() []Step {
	out := make([]Step, len(stepOrder))
	copy(out, stepOrder)
	return out
}

func (s Step) String() string {
	switch s {
	case StepMicrochip:
		return "microchip"
	case StepPhoto:
		return "photo"
	case StepDescription:
		return "description"
	case StepContact:
		return "contact"
	case StepSummary:
		return "summary"
	default:
		return "unknown"
	}
}

func (s Step) index() int {
	for i, step := range stepOrder {
		if step == s {
			return i
		}
	}
	return -1
}

// NextStep returns the step after s. ok is false for the last step.
func NextStep(s Step) (next Step, ok bool) {
	i := s.index()
	if i < 0 || i+1 >= len(stepOrder) {
		return s, false
	}
	return stepOrder[i+1], true
}

// PreviousStep returns the step before s. ok is false for the first step.
func PreviousStep(s Step) (prev Step, ok bool) {
	i := s.index()
	if i <= 0 {
		return s, false
	}
	return stepOrder[i-1], true
}

// FirstStep is where every flow starts
func FirstStep() Step {
	return stepOrder[0]
}
