package types

import "bytes"

// Answers is a serialised answer-set (JSON). Answer-sets only ever leave the
// runtime that produced them in this form, so every consumer works on its
// own copy.
type Answers []byte

// IsZero reports whether no answer-set was recorded
func (a Answers) IsZero() bool {
	return len(bytes.TrimSpace(a)) == 0
}

// Clone returns an independent copy of the serialised answers
func (a Answers) Clone() Answers {
	if a == nil {
		return nil
	}
	return append(Answers(nil), a...)
}

// String returns the JSON text
func (a Answers) String() string {
	return string(a)
}
