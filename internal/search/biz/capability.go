package biz

import "context"

// Capability is the probed database search feature set. It is computed
// at most once per engine instance and is tenant-agnostic: it reflects
// database-wide feature availability, never data.
type Capability struct {
	FullText bool `json:"full_text"`
	Trigram  bool `json:"trigram"`
	Unaccent bool `json:"unaccent"`
	UUIDGen  bool `json:"uuid_gen"`
}

// CapabilityProber runs the read-only introspection queries. A failed
// sub-check reports false for that feature and never aborts the others.
type CapabilityProber interface {
	Probe(ctx context.Context) Capability
}
