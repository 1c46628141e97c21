package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/mrlokans/bookcatalog/internal/apperrors"
)

// Mode selects how a Mutation changes an association set.
type Mode int

const (
	// ModeConnect adds members and never removes existing ones.
	ModeConnect Mode = iota + 1
	// ModeReplace makes the set equal to exactly the given members.
	ModeReplace
	// ModeDisconnect removes the given members if present.
	ModeDisconnect
)

func (m Mode) String() string {
	switch m {
	case ModeConnect:
		return "connect"
	case ModeReplace:
		return "replace"
	case ModeDisconnect:
		return "disconnect"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Mutation is a relationship change: one of Connect, Replace or Disconnect
// applied to a list of related ids.
type Mutation struct {
	Mode Mode
	IDs  []uint
}

func Connect(ids ...uint) Mutation    { return Mutation{Mode: ModeConnect, IDs: ids} }
func Replace(ids ...uint) Mutation    { return Mutation{Mode: ModeReplace, IDs: ids} }
func Disconnect(ids ...uint) Mutation { return Mutation{Mode: ModeDisconnect, IDs: ids} }

// Mutate applies m to owner's association named relation, where T is the
// related entity type. owner must be a pointer to a persisted entity.
//
// Related rows are loaded by id before the association call so that unknown
// ids fail with a NotFound error instead of being inserted as blank rows.
func Mutate[T any](db *gorm.DB, owner any, relation string, m Mutation) error {
	ids := uniqueIDs(m.IDs)

	if len(ids) == 0 {
		if m.Mode == ModeReplace {
			return db.Model(owner).Association(relation).Clear()
		}
		return nil
	}

	var targets []T
	if err := db.Where("id IN ?", ids).Find(&targets).Error; err != nil {
		return err
	}
	if len(targets) != len(ids) {
		if m.Mode == ModeDisconnect {
			// Missing rows cannot be linked; nothing to remove for them.
			if len(targets) == 0 {
				return nil
			}
		} else {
			return missingError[T](db, relation, ids)
		}
	}

	assoc := db.Model(owner).Association(relation)
	if assoc.Error != nil {
		return assoc.Error
	}

	switch m.Mode {
	case ModeConnect:
		return assoc.Append(targets)
	case ModeReplace:
		return assoc.Replace(targets)
	case ModeDisconnect:
		return assoc.Delete(targets)
	default:
		return apperrors.Validation("unknown relation mode %s", m.Mode)
	}
}

func missingError[T any](db *gorm.DB, relation string, ids []uint) error {
	var found []uint
	if err := db.Model(new(T)).Where("id IN ?", ids).Pluck("id", &found).Error; err != nil {
		return err
	}
	seen := make(map[uint]bool, len(found))
	for _, id := range found {
		seen[id] = true
	}
	missing := make([]uint, 0, len(ids)-len(found))
	for _, id := range ids {
		if !seen[id] {
			missing = append(missing, id)
		}
	}
	return apperrors.NotFound("%s not found: %v", relation, missing)
}

// uniqueIDs drops zero and repeated ids, keeping first-seen order.
func uniqueIDs(ids []uint) []uint {
	out := make([]uint, 0, len(ids))
	seen := make(map[uint]bool, len(ids))
	for _, id := range ids {
		if id == 0 || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
