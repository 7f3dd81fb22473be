package engine

import (
	"github.com/MRamiBalles/murmur/internal/domain/pawn"
	"github.com/MRamiBalles/murmur/internal/domain/situation"
	"github.com/MRamiBalles/murmur/internal/memory"
)

// UtteranceKind separates logged thoughts from spoken remarks.
type UtteranceKind string

const (
	KindOpinion UtteranceKind = "opinion"
	KindRemark  UtteranceKind = "remark"
)

// Utterance is what the engine hands to its sink.
type Utterance struct {
	Kind        UtteranceKind             `json:"kind"`
	Speaker     pawn.ID                   `json:"speaker"`
	Other       pawn.ID                   `json:"other"`
	Text        string                    `json:"text"`
	Interaction situation.InteractionType `json:"interaction"`
	Tick        int64                     `json:"tick"`
	// Entry is set for opinions.
	Entry *memory.Entry `json:"entry,omitempty"`
}

// Sink receives every opinion and remark. Emit runs on the engine goroutine
// and must not block.
type Sink interface {
	Emit(u Utterance)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Utterance)

func (f SinkFunc) Emit(u Utterance) { f(u) }

type nopSink struct{}

func (nopSink) Emit(Utterance) {}
