package workflow

// Step is one stage of the guided data-entry sequence.
type Step int

const (
	StepLocation Step = iota
	StepWaterType
	StepPinID
	StepBluetooth
	StepSensor
	StepImage

	stepCount = 6
)

// Steps lists every step in workflow order.
var Steps = []Step{StepLocation, StepWaterType, StepPinID, StepBluetooth, StepSensor, StepImage}

func (s Step) String() string {
	switch s {
	case StepLocation:
		return "location"
	case StepWaterType:
		return "water_type"
	case StepPinID:
		return "pin_id"
	case StepBluetooth:
		return "bluetooth"
	case StepSensor:
		return "sensor"
	case StepImage:
		return "image"
	}
	return "unknown"
}

// MarkerState is the visual state of a step's progress marker.
type MarkerState int

const (
	Pending MarkerState = iota
	Active
	Done
)

func (m MarkerState) String() string {
	switch m {
	case Pending:
		return "pending"
	case Active:
		return "active"
	case Done:
		return "done"
	}
	return "unknown"
}

// Transition records one marker change.
type Transition struct {
	Step Step
	From MarkerState
	To   MarkerState
}

// Progress holds the marker of every step. The active marker is always the
// first step that is not Done, so it only ever moves forward and a Done
// marker is never revisited.
type Progress struct {
	markers [stepCount]MarkerState
	log     []Transition
}

func newProgress() *Progress {
	p := &Progress{}
	p.set(StepLocation, Active)
	return p
}

// State returns the marker of a step.
func (p *Progress) State(s Step) MarkerState {
	return p.markers[s]
}

// Active returns the active step, or false once every step is Done.
func (p *Progress) Active() (Step, bool) {
	for _, s := range Steps {
		if p.markers[s] == Active {
			return s, true
		}
	}
	return 0, false
}

// Complete reports whether every step is Done.
func (p *Progress) Complete() bool {
	for _, s := range Steps {
		if p.markers[s] != Done {
			return false
		}
	}
	return true
}

// Transitions returns every marker change in order.
func (p *Progress) Transitions() []Transition {
	return append([]Transition(nil), p.log...)
}

// Snapshot copies the markers keyed by step.
func (p *Progress) Snapshot() map[Step]MarkerState {
	out := make(map[Step]MarkerState, len(Steps))
	for _, s := range Steps {
		out[s] = p.markers[s]
	}
	return out
}

// done marks a step Done. A Pending step passes through Active first.
func (p *Progress) done(s Step) {
	switch p.markers[s] {
	case Done:
		return
	case Pending:
		p.set(s, Active)
	}
	p.set(s, Done)
	p.advance()
}

// advance activates the first step that is not Done.
func (p *Progress) advance() {
	for _, s := range Steps {
		switch p.markers[s] {
		case Active:
			return
		case Pending:
			p.set(s, Active)
			return
		}
	}
}

func (p *Progress) set(s Step, to MarkerState) {
	from := p.markers[s]
	if from == to {
		return
	}
	p.markers[s] = to
	p.log = append(p.log, Transition{Step: s, From: from, To: to})
}
