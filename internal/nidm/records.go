package nidm

import "github.com/google/uuid"

// NewID returns a fresh niiri identifier.
func NewID() QName {
	return NIIRI.Term(uuid.NewString())
}

// SoftwareAgent describes the tool and version that produced an analysis.
// It is built once per export and not modified afterwards.
type SoftwareAgent struct {
	ID       QName   `yaml:"id"`
	Name     string  `yaml:"label"`
	Version  string  `yaml:"version"`
	Type     QName   `yaml:"type"`
	ProvType QName   `yaml:"prov_type"`
	Types    []QName `yaml:"types"`
}

// NewSoftwareAgent returns a record for software name at version, tagged
// with the neurolex term for that software.
func NewSoftwareAgent(name, version string, nlxType QName) *SoftwareAgent {
	return &SoftwareAgent{
		ID:       NewID(),
		Name:     name,
		Version:  version,
		Type:     nlxType,
		ProvType: ProvAgent,
		Types:    []QName{nlxType, ProvSoftwareAgent},
	}
}

// Attributes returns the PROV attributes the agent contributes to a graph,
// in a stable order.
func (s *SoftwareAgent) Attributes() []Attribute {
	attrs := make([]Attribute, 0, len(s.Types)+2)
	for _, t := range s.Types {
		attrs = append(attrs, Attribute{Key: PROV.Term("type"), Value: string(t)})
	}
	attrs = append(attrs,
		Attribute{Key: ProvLabel, Value: s.Name},
		Attribute{Key: NIDMSoftwareVersion, Value: s.Version},
	)
	return attrs
}

// Attribute is one key/value pair of a PROV record.
type Attribute struct {
	Key   QName  `yaml:"key"`
	Value string `yaml:"value"`
}

// ModelFitting, Contrast and Inference are placeholders: no back-end
// populates them yet, so they only carry an identity.

type ModelFitting struct {
	ID    QName  `yaml:"id"`
	Label string `yaml:"label,omitempty"`
}

type Contrast struct {
	ID    QName  `yaml:"id"`
	Label string `yaml:"label,omitempty"`
}

type Inference struct {
	ID    QName  `yaml:"id"`
	Label string `yaml:"label,omitempty"`
}
