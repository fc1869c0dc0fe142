package wizard

import "fmt"

// Wizard steps.
const (
	StepExpose = 1
	StepTable  = 2
	StepExport = 3

	Steps = StepExport
)

// Gate tracks the highest unlocked step and the step being viewed. The
// unlocked step never decreases.
type Gate struct {
	current int
	max     int
}

// NewGate returns a gate on step 1 with only step 1 unlocked.
func NewGate() Gate {
	return Gate{current: StepExpose, max: StepExpose}
}

func (g *Gate) Current() int { return g.current }
func (g *Gate) Max() int     { return g.max }

// Advance moves to target when it is at most one step past the highest
// unlocked step and check passes for every step from the current one up to
// target, so a step is never entered without its predecessor's check. On
// failure the gate is unchanged and check's error is returned as is.
func (g *Gate) Advance(target int, check func(step int) error) error {
	if target < 1 || target > Steps {
		return fmt.Errorf("%w: %d", ErrInvalidStep, target)
	}
	if target > g.max+1 {
		return fmt.Errorf("%w: step %d", ErrStepLocked, target)
	}
	if check != nil {
		for step := g.current; step < target; step++ {
			if err := check(step); err != nil {
				return err
			}
		}
	}

	g.max = max(g.max, target)
	g.current = target
	return nil
}

// Navigate views any unlocked step.
func (g *Gate) Navigate(target int) error {
	if target < 1 || target > Steps {
		return fmt.Errorf("%w: %d", ErrInvalidStep, target)
	}
	if target > g.max {
		return fmt.Errorf("%w: step %d", ErrStepLocked, target)
	}
	g.current = target
	return nil
}

// Unlock raises the highest unlocked step to step without moving the view.
func (g *Gate) Unlock(step int) {
	g.max = max(g.max, min(step, Steps))
}
