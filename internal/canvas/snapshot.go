package canvas

import (
	"encoding/json"
	"fmt"
)

// snapshotVersion is bumped whenever the document layout changes.
const snapshotVersion = 1

// Snapshot is the serialized state of a surface: background and scene.
// Snapshots are never modified after Serialize returns them.
type Snapshot []byte

type document struct {
	Version    int      `json:"version"`
	Background string   `json:"background"`
	Objects    []Object `json:"objects"`
}

// Serialize captures the current scene. The same scene always serializes to
// the same bytes.
func (s *Surface) Serialize() (Snapshot, error) {
	if s.closed {
		return nil, ErrClosed
	}
	objects := s.objects
	if objects == nil {
		objects = []Object{}
	}
	data, err := json.Marshal(document{
		Version:    snapshotVersion,
		Background: s.background,
		Objects:    objects,
	})
	if err != nil {
		return nil, fmt.Errorf("canvas: serialize: %w", err)
	}
	return Snapshot(data), nil
}

// Restore replaces the scene with the one captured in snap. On error the
// surface is left as it was.
func (s *Surface) Restore(snap Snapshot) error {
	if s.closed {
		return ErrClosed
	}
	var doc document
	if err := json.Unmarshal(snap, &doc); err != nil {
		return fmt.Errorf("%w: %v", ErrBadSnapshot, err)
	}
	if doc.Version != snapshotVersion {
		return fmt.Errorf("%w: unsupported version %d", ErrBadSnapshot, doc.Version)
	}
	if _, err := ParseColor(doc.Background); err != nil {
		return fmt.Errorf("%w: background: %v", ErrBadSnapshot, err)
	}
	for i := range doc.Objects {
		o := &doc.Objects[i]
		if err := o.Validate(); err != nil {
			return fmt.Errorf("%w: object %d: %v", ErrBadSnapshot, i, err)
		}
		if o.Kind == KindImage {
			if err := o.decodeSrc(); err != nil {
				return fmt.Errorf("%w: object %d: %v", ErrBadSnapshot, i, err)
			}
		}
	}

	s.background = doc.Background
	s.objects = doc.Objects
	if len(s.objects) == 0 {
		s.objects = nil
	}
	s.changed()
	return nil
}
