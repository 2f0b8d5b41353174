package source

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dshills/keychord/internal/input/key"
	"github.com/dshills/keychord/internal/logging"
)

// ErrScriptSyntax is returned for malformed script lines.
var ErrScriptSyntax = errors.New("script syntax error")

// Op is a script instruction.
type Op uint8

const (
	// OpDown presses one key.
	OpDown Op = iota + 1
	// OpUp releases one key.
	OpUp
	// OpTap presses a combo's keys in order and releases them in reverse.
	OpTap
	// OpReset discards held state.
	OpReset
	// OpWait pauses playback.
	OpWait
)

// String returns the script verb for o.
func (o Op) String() string {
	switch o {
	case OpDown:
		return "down"
	case OpUp:
		return "up"
	case OpTap:
		return "tap"
	case OpReset:
		return "reset"
	case OpWait:
		return "wait"
	default:
		return fmt.Sprintf("op(%d)", uint8(o))
	}
}

// Step is one parsed script line.
type Step struct {
	Op    Op
	Codes []key.Code
	Wait  time.Duration
	Line  int
}

// Script replays key events from a text script. Each line holds one step:
//
//	down ctrl
//	up   ctrl
//	tap  ctrl+alt+z
//	wait 50ms
//	reset
//
// Verb and argument may be separated by any run of spaces or tabs. Blank
// lines and lines starting with "#" are ignored.
type Script struct {
	Emitter

	steps []Step
}

// ParseScript reads a script from r.
func ParseScript(r io.Reader) (*Script, error) {
	s := &Script{}
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		step, err := parseStep(text)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		step.Line = line
		s.steps = append(s.steps, step)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading script: %w", err)
	}
	return s, nil
}

// LoadScript reads a script file.
func LoadScript(path string) (*Script, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening script: %w", err)
	}
	defer f.Close()

	return ParseScript(f)
}

func parseStep(text string) (Step, error) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return Step{}, fmt.Errorf("%w: empty step", ErrScriptSyntax)
	}
	verb, arg := fields[0], strings.Join(fields[1:], " ")

	switch strings.ToLower(verb) {
	case "down", "up":
		c, ok := key.Lookup(arg)
		if !ok {
			return Step{}, fmt.Errorf("%w: %q", key.ErrUnknownKey, arg)
		}
		op := OpDown
		if strings.EqualFold(verb, "up") {
			op = OpUp
		}
		return Step{Op: op, Codes: []key.Code{c}}, nil

	case "tap":
		codes, err := key.ParseCombo(arg)
		if err != nil {
			return Step{}, err
		}
		return Step{Op: OpTap, Codes: codes}, nil

	case "wait":
		d, err := time.ParseDuration(arg)
		if err != nil || d < 0 {
			return Step{}, fmt.Errorf("%w: bad duration %q", ErrScriptSyntax, arg)
		}
		return Step{Op: OpWait, Wait: d}, nil

	case "reset":
		if arg != "" {
			return Step{}, fmt.Errorf("%w: reset takes no argument", ErrScriptSyntax)
		}
		return Step{Op: OpReset}, nil

	default:
		return Step{}, fmt.Errorf("%w: unknown verb %q", ErrScriptSyntax, verb)
	}
}

// Steps returns the parsed steps.
func (s *Script) Steps() []Step {
	return s.steps
}

// Play emits every step in order. It stops early if ctx is done. Steps are
// traced to the logger carried by ctx.
func (s *Script) Play(ctx context.Context) error {
	log := logging.FromContext(ctx)
	log.Debug().Int("steps", len(s.steps)).Msg("script started")

	for _, step := range s.steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		log.Trace().Int("line", step.Line).Stringer("op", step.Op).Msg("script step")

		switch step.Op {
		case OpDown:
			s.Press(step.Codes[0])
		case OpUp:
			s.Release(step.Codes[0])
		case OpTap:
			s.Tap(step.Codes...)
		case OpReset:
			s.Reset()
		case OpWait:
			timer := time.NewTimer(step.Wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}
	}
	log.Debug().Msg("script finished")
	return nil
}
