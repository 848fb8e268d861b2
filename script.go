package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// step is one scripted user action, applied once the loop has run Frame
// frames. Pointer positions are fractions of the viewport.
type step struct {
	Frame  int
	Action string
	Body   string
	X, Y   float64
	Width  int
	Height int
}

// parseScript reads a comma separated timeline such as
// "0:overview,30:planet=earth,240:sun,420:click=0.5x0.5". Supported actions
// are overview, close, sun, planet=<id>, click=<fx>x<fy>, move=<fx>x<fy> and
// resize=<w>x<h>. Steps are returned ordered by frame; ties keep script order.
func parseScript(s string) ([]step, error) {
	var steps []step
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		at, action, ok := strings.Cut(item, ":")
		if !ok {
			return nil, fmt.Errorf("script step %q: missing frame", item)
		}
		frame, err := strconv.Atoi(at)
		if err != nil || frame < 0 {
			return nil, fmt.Errorf("script step %q: invalid frame %q", item, at)
		}

		st := step{Frame: frame}
		name, arg, _ := strings.Cut(action, "=")
		st.Action = name
		switch name {
		case "overview", "close", "sun":
		case "planet":
			if arg == "" {
				return nil, fmt.Errorf("script step %q: planet needs a body id", item)
			}
			st.Body = arg
		case "click", "move":
			if st.X, st.Y, err = parsePair(arg); err != nil {
				return nil, fmt.Errorf("script step %q: %w", item, err)
			}
			if st.X < 0 || st.X > 1 || st.Y < 0 || st.Y > 1 {
				return nil, fmt.Errorf("script step %q: position outside the viewport", item)
			}
		case "resize":
			w, h, err := parsePair(arg)
			if err != nil {
				return nil, fmt.Errorf("script step %q: %w", item, err)
			}
			st.Width, st.Height = int(w), int(h)
			if st.Width <= 0 || st.Height <= 0 {
				return nil, fmt.Errorf("script step %q: invalid size", item)
			}
		default:
			return nil, fmt.Errorf("script step %q: unknown action %q", item, name)
		}
		steps = append(steps, st)
	}
	sort.SliceStable(steps, func(i, j int) bool { return steps[i].Frame < steps[j].Frame })
	return steps, nil
}

func parsePair(s string) (float64, float64, error) {
	a, b, ok := strings.Cut(s, "x")
	if !ok {
		return 0, 0, fmt.Errorf("expected AxB, got %q", s)
	}
	x, err := strconv.ParseFloat(a, 64)
	if err != nil {
		return 0, 0, err
	}
	y, err := strconv.ParseFloat(b, 64)
	if err != nil {
		return 0, 0, err
	}
	return x, y, nil
}
