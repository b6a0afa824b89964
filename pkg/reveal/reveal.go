// Package reveal turns a complete answer into the progressive display states
// shown while the assistant appears to type it out.
package reveal

import (
	"iter"
	"unicode/utf8"
)

// DefaultPlaceholder is shown before any characters of the answer appear.
const DefaultPlaceholder = "AI is typing..."

// Frame is a single display state.
type Frame struct {
	Text        string
	Placeholder bool
}

// Sequence is the finite list of frames for one answer: the placeholder
// followed by every prefix of the answer, one character longer each time.
// Frames are computed on demand and the sequence can be replayed freely.
type Sequence struct {
	answer      string
	placeholder string

	// offsets[i] is the byte length of the first i+1 runes
	offsets []int
}

// New builds the sequence for answer. An empty placeholder selects
// DefaultPlaceholder.
func New(answer, placeholder string) Sequence {
	if placeholder == "" {
		placeholder = DefaultPlaceholder
	}

	offsets := make([]int, 0, utf8.RuneCountInString(answer))
	for i, r := range answer {
		offsets = append(offsets, i+utf8.RuneLen(r))
	}

	return Sequence{answer: answer, placeholder: placeholder, offsets: offsets}
}

// Answer returns the complete text being revealed.
func (s Sequence) Answer() string {
	return s.answer
}

// Len returns the number of frames: one placeholder plus one per character.
func (s Sequence) Len() int {
	return len(s.offsets) + 1
}

// At returns frame i. Frame 0 is the placeholder, frame i > 0 holds the first
// i characters of the answer. At panics when i is out of range.
func (s Sequence) At(i int) Frame {
	if i < 0 || i >= s.Len() {
		panic("reveal: frame index out of range")
	}
	if i == 0 {
		return Frame{Text: s.placeholder, Placeholder: true}
	}
	return Frame{Text: s.answer[:s.offsets[i-1]]}
}

// Final returns the last frame. For an empty answer this is the placeholder.
func (s Sequence) Final() Frame {
	return s.At(s.Len() - 1)
}

// All yields every frame in order.
func (s Sequence) All() iter.Seq[Frame] {
	return func(yield func(Frame) bool) {
		for i := range s.Len() {
			if !yield(s.At(i)) {
				return
			}
		}
	}
}
