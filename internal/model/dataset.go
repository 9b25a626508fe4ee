package model

import (
	"strings"

	"github.com/rotisserie/eris"
)

// Conversation roles as they appear in instruction-tuning annotations.
const (
	RoleHuman = "human"
	RoleModel = "gpt"
)

// ImageToken is the literal placeholder annotations use to mark where the
// image is spliced into a conversation turn.
const ImageToken = "<image>"

// ErrMalformedConversation indicates a conversation whose turns do not
// strictly alternate human/model starting with a human turn.
var ErrMalformedConversation = eris.New("model: conversation turns out of order")

// Turn is a single conversation turn.
type Turn struct {
	From  string `json:"from"`
	Value string `json:"value"`
}

// DatasetItem is one annotated image with its conversation. The perturbation
// generator sets PerturbationText; items already carrying it are passed
// through unchanged.
type DatasetItem struct {
	ID               string `json:"id"`
	Image            string `json:"image"`
	Conversations    []Turn `json:"conversations"`
	PerturbationText string `json:"perturbation_text,omitempty"`
}

// StripImageTokens removes every image placeholder from s, including the
// newline-glued forms annotations commonly use.
func StripImageTokens(s string) string {
	s = strings.ReplaceAll(s, "\n"+ImageToken, "")
	s = strings.ReplaceAll(s, ImageToken+"\n", "")
	return strings.ReplaceAll(s, ImageToken, "")
}

// Flatten concatenates a multi-turn conversation into a single instruction
// (all human turns) and answer (all model turns), with image placeholders
// stripped. Turns must alternate human/model starting at index 0; anything
// else returns ErrMalformedConversation.
func (d *DatasetItem) Flatten() (instruction, answer string, err error) {
	if len(d.Conversations) < 2 || len(d.Conversations)%2 != 0 {
		return "", "", eris.Wrapf(ErrMalformedConversation, "item %s: %d turns", d.ID, len(d.Conversations))
	}

	var instParts, ansParts []string
	for i, turn := range d.Conversations {
		want := RoleHuman
		if i%2 == 1 {
			want = RoleModel
		}
		if turn.From != want {
			return "", "", eris.Wrapf(ErrMalformedConversation, "item %s: turn %d is %q, want %q", d.ID, i, turn.From, want)
		}
		text := StripImageTokens(turn.Value)
		if i%2 == 0 {
			instParts = append(instParts, text)
		} else {
			ansParts = append(ansParts, text)
		}
	}

	return strings.Join(instParts, " "), strings.Join(ansParts, " "), nil
}
