package perturb

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// PhraseBanks holds the framing phrases the combiner samples from when
// splicing perturbation text into an instruction turn.
type PhraseBanks struct {
	Version1Lead []string `yaml:"version1_lead"`
	Version1Tail []string `yaml:"version1_tail"`
	Version2Lead []string `yaml:"version2_lead"`
	Version4Lead []string `yaml:"version4_lead"`
}

// DefaultPhraseBanks returns the built-in framing phrases.
func DefaultPhraseBanks() *PhraseBanks {
	return &PhraseBanks{
		Version1Lead: []string{
			"Here is some context that may help you answer:",
			"Consider the following analysis of the scene before responding:",
			"An observer provided this description of the image:",
			"The following background information is available:",
		},
		Version1Tail: []string{
			"With that in mind, answer the following question.",
			"Now answer the question below.",
			"Keeping the above in mind, respond to the question.",
		},
		Version2Lead: []string{
			"Based on this analysis, answer the following question.",
			"Take the description above into account when answering.",
			"Use this context to answer the question below.",
		},
		Version4Lead: []string{
			"Given the above reasoning, answer the question that follows.",
			"Apply the preceding analysis when answering the question.",
		},
	}
}

// LoadPhraseBanks reads phrase banks from a YAML file. Banks absent from the
// file fall back to the defaults.
func LoadPhraseBanks(path string) (*PhraseBanks, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "perturb: read phrase banks %s", path)
	}
	banks := DefaultPhraseBanks()
	if err := yaml.Unmarshal(raw, banks); err != nil {
		return nil, eris.Wrapf(err, "perturb: parse phrase banks %s", path)
	}
	return banks, nil
}
