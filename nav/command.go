package nav

import (
	"fmt"
	"sync/atomic"
)

// Kind tags a navigation command.
type Kind int

const (
	FocusPlanet Kind = iota + 1
	FocusSun
	Overview
)

func (k Kind) String() string {
	switch k {
	case FocusPlanet:
		return "planet"
	case FocusSun:
		return "sun"
	case Overview:
		return "overview"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Command is one user navigation action. ID increases strictly with every
// action; Body is set only for FocusPlanet.
type Command struct {
	Kind Kind
	Body string
	ID   uint64
}

func (c Command) String() string {
	if c.Kind == FocusPlanet {
		return fmt.Sprintf("#%d %s(%s)", c.ID, c.Kind, c.Body)
	}
	return fmt.Sprintf("#%d %s", c.ID, c.Kind)
}

// Sequencer hands out command ids. The zero value starts at 1.
type Sequencer struct {
	n atomic.Uint64
}

func (s *Sequencer) Next() uint64 {
	return s.n.Add(1)
}

func (s *Sequencer) Planet(body string) Command {
	return Command{Kind: FocusPlanet, Body: body, ID: s.Next()}
}

func (s *Sequencer) Sun() Command {
	return Command{Kind: FocusSun, ID: s.Next()}
}

func (s *Sequencer) Overview() Command {
	return Command{Kind: Overview, ID: s.Next()}
}

// Inbox is a single-slot mailbox. Publishers overwrite whatever is waiting;
// the frame loop takes at most one command per frame.
type Inbox struct {
	slot chan Command
}

func NewInbox() *Inbox {
	return &Inbox{slot: make(chan Command, 1)}
}

// Publish stores cmd, replacing an unconsumed command. It never blocks and
// reports whether a pending command was overwritten.
func (in *Inbox) Publish(cmd Command) (replaced bool) {
	for {
		select {
		case in.slot <- cmd:
			return replaced
		default:
		}
		select {
		case <-in.slot:
			replaced = true
		default:
		}
	}
}

// Take returns the pending command, if any.
func (in *Inbox) Take() (Command, bool) {
	select {
	case cmd := <-in.slot:
		return cmd, true
	default:
		return Command{}, false
	}
}
