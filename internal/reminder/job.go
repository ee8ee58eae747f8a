package reminder

import (
	"context"
	"fmt"
)

// Kind identifies what a job reminds about
type Kind int

const (
	KindMonthlyReport Kind = iota + 1
	KindClockIn
	KindClockOut
)

func (k Kind) String() string {
	switch k {
	case KindMonthlyReport:
		return "monthly_report"
	case KindClockIn:
		return "clock_in"
	case KindClockOut:
		return "clock_out"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Action is the work a job performs when its trigger matches
type Action func(ctx context.Context) error

// Job binds an action to a trigger and a target channel
type Job struct {
	Name      string
	Kind      Kind
	Trigger   Trigger
	ChannelID string
	Action    Action
}

// Validate checks the job can be registered
func (j Job) Validate() error {
	if j.Name == "" {
		return fmt.Errorf("job name is required")
	}
	if j.Trigger == nil {
		return fmt.Errorf("job %s: trigger is required", j.Name)
	}
	if j.Action == nil {
		return fmt.Errorf("job %s: action is required", j.Name)
	}
	return nil
}
