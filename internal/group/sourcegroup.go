// Package group implements the two coordination layers that sit above the
// fabric package: SourceGroup, which derives "companion" relationships from
// parallel sequences of sources, and MatrixGroup, which drives a named
// Matrix's Select and then routes companions to their preferred outputs.
package group

import (
	"github.com/google/uuid"

	"fabricmux/internal/domain"
)

// SourceGroup holds several parallel, ordered sequences of sources (e.g. one
// per signal type: video, audio, usb) keyed by group name. Two sources are
// companions if they occupy the same index position in two different
// groups; a nil slot means "no source at this position in this group" and
// never produces a companion.
type SourceGroup struct {
	groups map[string][]*domain.Source
}

// OutputAssignment binds every source in a named group to a preferred
// output, used by NewSourceGroup's assignOutputs option.
type OutputAssignment struct {
	Group  string
	Output domain.Output
}

// NewSourceGroup constructs a SourceGroup from named, ordered source sequences.
// assignOutputs optionally binds every non-nil source in the named groups
// to a preferred output, for later companion routing.
func NewSourceGroup(groups map[string][]*domain.Source, assignOutputs ...OutputAssignment) *SourceGroup {
	sg := &SourceGroup{groups: groups}
	for _, a := range assignOutputs {
		for _, src := range sg.groups[a.Group] {
			if src != nil {
				src.PreferredOut = a.Output
			}
		}
	}
	return sg
}

// GetCompanions finds the first group containing source, then returns every
// other source occupying that same index position across all groups
// (including the one source was found in), excluding nil slots and source
// itself. The result is an unordered set, keyed by source identity (UUID).
// If source is not present in any group, the result is empty.
func (sg *SourceGroup) GetCompanions(source *domain.Source) []*domain.Source {
	idx := -1
	for _, seq := range sg.groups {
		for i, s := range seq {
			if s != nil && s.UUID == source.UUID {
				idx = i
				break
			}
		}
		if idx != -1 {
			break
		}
	}
	if idx == -1 {
		return nil
	}

	seen := make(map[uuid.UUID]struct{})
	var out []*domain.Source
	for _, seq := range sg.groups {
		if idx >= len(seq) {
			continue
		}
		companion := seq[idx]
		if companion == nil || companion.UUID == source.UUID {
			continue
		}
		if _, dup := seen[companion.UUID]; dup {
			continue
		}
		seen[companion.UUID] = struct{}{}
		out = append(out, companion)
	}
	return out
}
