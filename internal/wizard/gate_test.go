package wizard_test

import (
	"errors"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/JaimeStill/flatcheck/internal/wizard"
)

func TestGateInitial(t *testing.T) {
	g := wizard.NewGate()
	if g.Current() != 1 || g.Max() != 1 {
		t.Errorf("gate = %d/%d, want 1/1", g.Current(), g.Max())
	}
}

func TestGateAdvance(t *testing.T) {
	pass := func(int) error { return nil }
	fail := func(int) error { return errors.New("not filled") }

	tests := []struct {
		name    string
		target  int
		check   func(int) error
		err     error
		current int
		max     int
	}{
		{"next step", 2, pass, nil, 2, 2},
		{"skip ahead", 3, pass, wizard.ErrStepLocked, 1, 1},
		{"below range", 0, pass, wizard.ErrInvalidStep, 1, 1},
		{"above range", 4, pass, wizard.ErrInvalidStep, 1, 1},
		{"check fails", 2, fail, nil, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := wizard.NewGate()
			err := g.Advance(tt.target, tt.check)

			if tt.err != nil && !errors.Is(err, tt.err) {
				t.Errorf("err = %v, want %v", err, tt.err)
			}
			if tt.name == "check fails" && err == nil {
				t.Error("expected check error")
			}
			if g.Current() != tt.current || g.Max() != tt.max {
				t.Errorf("gate = %d/%d, want %d/%d", g.Current(), g.Max(), tt.current, tt.max)
			}
		})
	}
}

func TestGateChecksCurrentStep(t *testing.T) {
	g := wizard.NewGate()
	g.Advance(2, nil)

	var checked int
	g.Advance(3, func(step int) error {
		checked = step
		return nil
	})
	if checked != 2 {
		t.Errorf("checked step %d, want 2", checked)
	}
}

func TestGateJumpChecksEveryStep(t *testing.T) {
	notFilled := errors.New("not filled")

	tests := []struct {
		name    string
		failAt  int
		wantErr error
		checked []int
		current int
		max     int
	}{
		{"all pass", 0, nil, []int{1, 2}, 3, 3},
		{"table check fails", 2, notFilled, []int{1, 2}, 1, 2},
		{"expose check fails", 1, notFilled, []int{1}, 1, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := wizard.NewGate()
			g.Unlock(wizard.StepTable)

			var checked []int
			err := g.Advance(wizard.StepExport, func(step int) error {
				checked = append(checked, step)
				if step == tt.failAt {
					return notFilled
				}
				return nil
			})

			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
			if !slices.Equal(checked, tt.checked) {
				t.Errorf("checked = %v, want %v", checked, tt.checked)
			}
			if g.Current() != tt.current || g.Max() != tt.max {
				t.Errorf("gate = %d/%d, want %d/%d", g.Current(), g.Max(), tt.current, tt.max)
			}
		})
	}
}

func TestGateBackwardAdvanceSkipsChecks(t *testing.T) {
	g := wizard.NewGate()
	g.Advance(2, nil)

	err := g.Advance(1, func(int) error { return errors.New("should not run") })
	if err != nil {
		t.Fatalf("err = %v", err)
	}
	if g.Current() != 1 || g.Max() != 2 {
		t.Errorf("gate = %d/%d, want 1/2", g.Current(), g.Max())
	}
}

func TestGateNavigate(t *testing.T) {
	g := wizard.NewGate()
	g.Advance(2, nil)
	g.Advance(3, nil)

	if err := g.Navigate(1); err != nil {
		t.Fatal(err)
	}
	if g.Current() != 1 || g.Max() != 3 {
		t.Errorf("gate = %d/%d, want 1/3", g.Current(), g.Max())
	}

	g2 := wizard.NewGate()
	if err := g2.Navigate(2); !errors.Is(err, wizard.ErrStepLocked) {
		t.Errorf("err = %v, want ErrStepLocked", err)
	}
}

func TestGateUnlock(t *testing.T) {
	g := wizard.NewGate()
	g.Unlock(2)
	if g.Current() != 1 || g.Max() != 2 {
		t.Errorf("gate = %d/%d, want 1/2", g.Current(), g.Max())
	}
	g.Unlock(1)
	g.Unlock(9)
	if g.Max() != wizard.Steps {
		t.Errorf("max = %d, want %d", g.Max(), wizard.Steps)
	}
}

func TestGateMonotonic(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))

	for run := range 200 {
		g := wizard.NewGate()
		prev := g.Max()

		for range 50 {
			target := rng.IntN(wizard.Steps + 2)
			switch rng.IntN(3) {
			case 0:
				g.Advance(target, func(int) error {
					if rng.IntN(2) == 0 {
						return errors.New("invalid")
					}
					return nil
				})
			case 1:
				g.Navigate(target)
			default:
				g.Unlock(target)
			}

			if g.Max() < prev {
				t.Fatalf("run %d: max decreased %d -> %d", run, prev, g.Max())
			}
			if g.Current() < 1 || g.Current() > g.Max() {
				t.Fatalf("run %d: current %d outside 1..%d", run, g.Current(), g.Max())
			}
			prev = g.Max()
		}
	}
}
