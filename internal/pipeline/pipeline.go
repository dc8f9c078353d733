// Package pipeline runs one topic through the image step and then the story step.
package pipeline

import (
	"context"
	"fmt"

	"github.com/dmorgan81/storybot/internal/image"
	"github.com/dmorgan81/storybot/internal/log"
	"github.com/dmorgan81/storybot/internal/prompt"
	"github.com/dmorgan81/storybot/internal/provider"
	"github.com/samber/do"
)

type State int

const (
	Idle State = iota
	ImageRequested
	StoryRequested
	Done
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case ImageRequested:
		return "image_requested"
	case StoryRequested:
		return "story_requested"
	case Done:
		return "done"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

const EmptyTopicWarning = "Please enter a topic first!"

// Result is everything one invocation hands to the UI shell. Image is kept when the
// story step fails.
type Result struct {
	State   State
	Topic   string
	Image   *image.Image
	Story   string
	Warning string
	Err     error
}

// Message is the user-facing text for a failed invocation.
func (r Result) Message() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// StepError names the step that failed.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("Failed to generate %s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// Observer is told about every state change of an invocation.
type Observer func(ctx context.Context, from, to State)

type Orchestrator struct {
	Provider provider.Provider
	Observer Observer
}

func NewOrchestrator(i *do.Injector) (*Orchestrator, error) {
	return &Orchestrator{Provider: do.MustInvoke[provider.Provider](i)}, nil
}

// Run drives one invocation to Done, Failed, or (for an empty topic) leaves it Idle.
// All per-invocation state lives on the stack, so concurrent runs share nothing.
func (o *Orchestrator) Run(ctx context.Context, topic string) Result {
	topic = prompt.Topic(topic)
	ctx = log.With(ctx, "topic", topic)
	log := log.FromContextOrDiscard(ctx).WithGroup("pipeline")

	res := Result{State: Idle, Topic: topic}
	if topic == "" {
		log.Warn("empty topic")
		res.Warning = EmptyTopicWarning
		return res
	}

	move := func(to State) {
		from := res.State
		res.State = to
		log.Info("state change", "from", from.String(), "to", to.String())
		if o.Observer != nil {
			o.Observer(ctx, from, to)
		}
	}

	move(ImageRequested)
	img, err := o.Provider.GenerateImage(ctx, prompt.Image(topic))
	if err != nil {
		log.Error("image step failed", "error", err)
		res.Err = &StepError{Step: "image", Err: err}
		move(Failed)
		return res
	}
	res.Image = img

	move(StoryRequested)
	story, err := o.Provider.GenerateStory(ctx, img, topic)
	if err != nil {
		log.Error("story step failed", "error", err)
		res.Err = &StepError{Step: "story", Err: err}
		move(Failed)
		return res
	}
	res.Story = story

	move(Done)
	return res
}
