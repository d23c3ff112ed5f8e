// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package prompt defines the interactive primitives the capture workflow
// needs from a user interface: a text box, a pick list and a yes/no choice.
//
// Navigation outcomes are values. A user pressing Back or dismissing a prompt
// is reported through Answer.Action, never as an error, so callers can tell
// "declined" apart from "navigated back" apart from "failed".
package prompt

import "context"

//go:generate mockgen -destination=mocks/mock_prompter.go -package=mocks -source=prompt.go Prompter

// Action is how the user left a prompt.
type Action int

const (
	// ActionAccepted means the user confirmed a value.
	ActionAccepted Action = iota
	// ActionBack means the user asked for the previous step.
	ActionBack
	// ActionDismissed means the user closed the prompt.
	ActionDismissed
)

func (a Action) String() string {
	switch a {
	case ActionAccepted:
		return "accepted"
	case ActionBack:
		return "back"
	case ActionDismissed:
		return "dismissed"
	default:
		return "unknown"
	}
}

// Answer pairs the user's action with the value they confirmed. Value is
// only meaningful when Action is ActionAccepted.
type Answer[T any] struct {
	Action Action
	Value  T
}

// Accepted wraps a confirmed value.
func Accepted[T any](v T) Answer[T] {
	return Answer[T]{Action: ActionAccepted, Value: v}
}

// Back reports a Back navigation.
func Back[T any]() Answer[T] {
	return Answer[T]{Action: ActionBack}
}

// Dismissed reports a closed prompt.
func Dismissed[T any]() Answer[T] {
	return Answer[T]{Action: ActionDismissed}
}

// Accepted reports whether the user confirmed a value.
func (a Answer[T]) Accepted() bool {
	return a.Action == ActionAccepted
}

// InputOptions configures a text box.
type InputOptions struct {
	Title       string
	Prompt      string
	Placeholder string
	// Value pre-fills the box.
	Value string
	// ValidationMessage is shown under the box when it opens.
	ValidationMessage string
	// Password masks what the user types.
	Password bool
	// AllowBack offers a Back control.
	AllowBack bool
}

// PickItem is one entry in a pick list.
type PickItem struct {
	ID          string
	Label       string
	Description string
}

// PickOptions configures a pick list.
type PickOptions struct {
	Title       string
	Placeholder string
	Items       []PickItem
	AllowBack   bool
}

// Prompter shows prompts to the user. Implementations return an error only
// when the prompt itself could not be shown or ctx ended.
type Prompter interface {
	Input(ctx context.Context, opts InputOptions) (Answer[string], error)
	Pick(ctx context.Context, opts PickOptions) (Answer[PickItem], error)
}
