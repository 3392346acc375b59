package tts

import "errors"

// Common errors for narration.
var (
	ErrSpeechUnavailable = errors.New("speech is not available on this system")
	ErrEngineFailed      = errors.New("speech engine failed")
	ErrEmptyText         = errors.New("nothing to read")
	ErrVoiceNotFound     = errors.New("requested voice not found")
)

// NarrationError records which part of narration failed and what it was
// doing at the time.
type NarrationError struct {
	Component string // "engine", "audio", "narrator"
	Action    string
	Err       error
}

func (e *NarrationError) Error() string {
	msg := e.Component
	if e.Action != "" {
		msg += " " + e.Action
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *NarrationError) Unwrap() error {
	return e.Err
}

// NewEngineError wraps err as a failure of the speech engine.
func NewEngineError(action string, err error) error {
	return &NarrationError{Component: "engine", Action: action, Err: errors.Join(ErrEngineFailed, err)}
}

// NewAudioError wraps err as a failure of audio playback.
func NewAudioError(action string, err error) error {
	return &NarrationError{Component: "audio", Action: action, Err: err}
}

// UserMessage turns err into a short message fit for the status bar.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrSpeechUnavailable):
		return "Narration is not available on this system"
	case errors.Is(err, ErrEmptyText):
		return "This page has nothing to read"
	case errors.Is(err, ErrEngineFailed):
		return "The narrator stumbled. Try again"
	default:
		var ne *NarrationError
		if errors.As(err, &ne) && ne.Component == "audio" {
			return "Audio playback failed"
		}
		return "Narration error: " + err.Error()
	}
}
