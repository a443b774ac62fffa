package services

import (
	"errors"
	"fmt"

	"github.com/ShabiDHM/advocatus-sub001/domain/core/aggregates"
	"github.com/ShabiDHM/advocatus-sub001/domain/core/entities"
	"github.com/ShabiDHM/advocatus-sub001/domain/core/valueobjects"
	pkgerrors "github.com/ShabiDHM/advocatus-sub001/pkg/errors"
)

// EditState is the state of an EditSession
type EditState int

const (
	EditIdle EditState = iota
	EditEditing
)

func (s EditState) String() string {
	if s == EditEditing {
		return "editing"
	}
	return "idle"
}

// EditSession edits one node at a time. While Editing it holds a draft of
// the node's fields; the canonical map is only touched by Commit.
// An EditSession is not safe for concurrent use.
type EditSession struct {
	state  EditState
	nodeID valueobjects.NodeID
	kind   valueobjects.NodeKind
	draft  entities.NodeFields
}

// NewEditSession returns an idle session
func NewEditSession() *EditSession {
	return &EditSession{state: EditIdle}
}

// State returns the current state
func (s *EditSession) State() EditState { return s.state }

// EditingNodeID returns the node being edited, or the zero id when idle
func (s *EditSession) EditingNodeID() valueobjects.NodeID {
	if s.state != EditEditing {
		return ""
	}
	return s.nodeID
}

// Open stages a copy of the node's fields
func (s *EditSession) Open(m *aggregates.EvidenceMap, id valueobjects.NodeID) error {
	if s.state == EditEditing {
		return pkgerrors.Wrapf(pkgerrors.ErrEditInProgress, "node %s is open", s.nodeID)
	}
	n, err := m.Node(id)
	if err != nil {
		return err
	}
	s.state = EditEditing
	s.nodeID = id
	s.kind = n.Kind()
	s.draft = n.Fields()
	return nil
}

// Draft returns a copy of the staged fields
func (s *EditSession) Draft() (entities.NodeFields, error) {
	if s.state != EditEditing {
		return entities.NodeFields{}, pkgerrors.ErrNoEditSession
	}
	return copyFields(s.draft), nil
}

// Update replaces the whole draft
func (s *EditSession) Update(f entities.NodeFields) error {
	if s.state != EditEditing {
		return pkgerrors.ErrNoEditSession
	}
	if err := s.checkKind(f); err != nil {
		return err
	}
	next := copyFields(f)
	if next.Claim == nil {
		next.Claim = s.draft.Claim
	}
	if next.Evidence == nil {
		next.Evidence = s.draft.Evidence
	}
	s.draft = next
	return nil
}

// SetLabel changes the draft label
func (s *EditSession) SetLabel(label string) error {
	return s.mutate(func(f *entities.NodeFields) error {
		f.Label = label
		return nil
	})
}

// SetContent changes the draft content
func (s *EditSession) SetContent(content string) error {
	return s.mutate(func(f *entities.NodeFields) error {
		f.Content = content
		return nil
	})
}

// SetProven changes a claim's proof status
func (s *EditSession) SetProven(proven bool) error {
	return s.mutate(func(f *entities.NodeFields) error {
		if f.Claim == nil {
			return s.wrongKind("proof status")
		}
		f.Claim.IsProven = proven
		return nil
	})
}

// SetExhibitNumber changes an evidence exhibit number
func (s *EditSession) SetExhibitNumber(exhibit string) error {
	return s.mutate(func(f *entities.NodeFields) error {
		if f.Evidence == nil {
			return s.wrongKind("exhibit number")
		}
		f.Evidence.ExhibitNumber = exhibit
		return nil
	})
}

// SetAuthenticated changes an evidence authentication flag
func (s *EditSession) SetAuthenticated(authenticated bool) error {
	return s.mutate(func(f *entities.NodeFields) error {
		if f.Evidence == nil {
			return s.wrongKind("authentication")
		}
		f.Evidence.IsAuthenticated = authenticated
		return nil
	})
}

// SetAdmission changes an evidence admission status
func (s *EditSession) SetAdmission(status valueobjects.AdmissionStatus) error {
	return s.mutate(func(f *entities.NodeFields) error {
		if f.Evidence == nil {
			return s.wrongKind("admission status")
		}
		if _, err := valueobjects.ParseAdmissionStatus(string(status)); err != nil {
			return err
		}
		f.Evidence.Admission = status
		return nil
	})
}

// Commit merges the draft into the canonical node and returns to Idle. All
// draft fields land together or none do. When the node no longer exists the
// draft is discarded.
func (s *EditSession) Commit(m *aggregates.EvidenceMap) (entities.Node, error) {
	if s.state != EditEditing {
		return entities.Node{}, pkgerrors.ErrNoEditSession
	}
	n, err := m.Node(s.nodeID)
	if err != nil {
		s.reset()
		return entities.Node{}, err
	}
	updated, err := n.WithFields(s.draft)
	if err != nil {
		return entities.Node{}, err
	}
	if err := m.ReplaceNode(updated); err != nil {
		return entities.Node{}, err
	}
	s.reset()
	return updated, nil
}

// Cancel discards the draft. Cancelling an idle session is a no-op.
func (s *EditSession) Cancel() {
	s.reset()
}

func (s *EditSession) mutate(fn func(*entities.NodeFields) error) error {
	if s.state != EditEditing {
		return pkgerrors.ErrNoEditSession
	}
	next := copyFields(s.draft)
	if err := fn(&next); err != nil {
		return err
	}
	s.draft = next
	return nil
}

func (s *EditSession) checkKind(f entities.NodeFields) error {
	if f.Claim != nil && s.kind != valueobjects.KindClaim {
		return s.wrongKind("claim attributes")
	}
	if f.Evidence != nil && s.kind != valueobjects.KindEvidence {
		return s.wrongKind("evidence attributes")
	}
	return nil
}

func (s *EditSession) wrongKind(what string) error {
	return pkgerrors.NewValidationError(fmt.Sprintf("%s cannot be set on a %s node", what, s.kind.DisplayName()))
}

func (s *EditSession) reset() {
	s.state = EditIdle
	s.nodeID = ""
	s.kind = ""
	s.draft = entities.NodeFields{}
}

func copyFields(f entities.NodeFields) entities.NodeFields {
	out := entities.NodeFields{Label: f.Label, Content: f.Content}
	if f.Claim != nil {
		c := *f.Claim
		out.Claim = &c
	}
	if f.Evidence != nil {
		e := *f.Evidence
		out.Evidence = &e
	}
	return out
}

// IsEditConflict reports whether err came from opening a second edit
func IsEditConflict(err error) bool {
	return errors.Is(err, pkgerrors.ErrEditInProgress)
}
