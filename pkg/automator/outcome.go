package automator

import "fmt"

// Mode classifies an Outcome.
type Mode string

const (
	ModeAuto         Mode = "auto"
	ModeLimitReached Mode = "limit_reached"
	ModeFailed       Mode = "failed"
)

// Step tags name the state an Outcome came from. They are reported to
// callers and written to batch reports, so they must not change.
const (
	StepOpenDialog     = "open_dialog"
	StepCheckCapacity  = "check_capacity"
	StepSelectSource   = "select_source"
	StepLocateInput    = "locate_input"
	StepEnterValue     = "enter_value"
	StepSubmit         = "submit"
	StepVerify         = "verify"
	StepCreateNotebook = "create_notebook"
)

// Failure details.
const (
	DetailNoAddButton     = "add source button not found"
	DetailDialogNotOpened = "dialog failed to open"
	DetailNoSourceOption  = "youtube option not found"
	DetailNoInput         = "input field not found"
	DetailNoSubmit        = "submit button not found"
	DetailDialogError     = "error message in dialog"
	DetailVerifyTimeout   = "dialog did not close (timeout)"
	DetailNoCreateButton  = "create button not found"
	DetailAutoAddTimeout  = "automation timed out"
)

// Outcome is the result of one automation run. Build it with Succeeded,
// LimitReached or Failed so that OK always implies ModeAuto and
// ModeLimitReached always implies !OK.
type Outcome struct {
	OK     bool   `json:"ok"`
	Mode   Mode   `json:"mode"`
	Detail string `json:"detail,omitempty"`
	Step   string `json:"step,omitempty"`
}

// Succeeded is the outcome of a source that was added.
func Succeeded() Outcome {
	return Outcome{OK: true, Mode: ModeAuto}
}

// LimitReached is the outcome of a notebook that cannot take more sources.
func LimitReached(current, max int) Outcome {
	return Outcome{
		Mode:   ModeLimitReached,
		Detail: fmt.Sprintf("limit reached (%d/%d)", current, max),
		Step:   StepCheckCapacity,
	}
}

// Failed is the outcome of a run that stopped at step.
func Failed(step, detail string) Outcome {
	return Outcome{Mode: ModeFailed, Detail: detail, Step: step}
}

func (o Outcome) String() string {
	if o.OK {
		return string(o.Mode)
	}
	if o.Step == "" {
		return fmt.Sprintf("%s: %s", o.Mode, o.Detail)
	}
	return fmt.Sprintf("%s [%s]: %s", o.Mode, o.Step, o.Detail)
}
