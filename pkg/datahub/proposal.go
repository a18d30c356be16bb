package datahub

import (
	"encoding/json"
	"fmt"
)

const ChangeTypeUpsert = "UPSERT"

// Proposal is one metadata change proposal: an aspect upsert addressed to an
// entity URN.
type Proposal struct {
	EntityURN  string
	EntityType string
	ChangeType string
	AspectName string
	Aspect     Aspect
}

func NewProposal(entityURN string, aspect Aspect) *Proposal {
	return &Proposal{
		EntityURN:  entityURN,
		EntityType: EntityTypeOf(entityURN),
		ChangeType: ChangeTypeUpsert,
		AspectName: aspect.AspectName(),
		Aspect:     aspect,
	}
}

// MarshalJSON renders the MCP-file encoding, with the aspect nested under
// its content type.
func (p *Proposal) MarshalJSON() ([]byte, error) {
	aspect, err := json.Marshal(p.Aspect)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize aspect %s: %w", p.AspectName, err)
	}

	return json.Marshal(struct {
		EntityType string          `json:"entityType"`
		EntityURN  string          `json:"entityUrn"`
		ChangeType string          `json:"changeType"`
		AspectName string          `json:"aspectName"`
		Aspect     json.RawMessage `json:"aspect"`
	}{
		EntityType: p.EntityType,
		EntityURN:  p.EntityURN,
		ChangeType: p.ChangeType,
		AspectName: p.AspectName,
		Aspect:     aspect,
	})
}

// WorkUnit is one emit-ready proposal with a stable id, useful for logging
// and deduplication downstream.
type WorkUnit struct {
	ID       string
	Proposal *Proposal
}

func NewWorkUnit(entityURN string, aspect Aspect) *WorkUnit {
	proposal := NewProposal(entityURN, aspect)

	return &WorkUnit{
		ID:       fmt.Sprintf("%s-%s", proposal.EntityURN, proposal.AspectName),
		Proposal: proposal,
	}
}
