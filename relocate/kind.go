package relocate

import (
	"fmt"
	"strings"

	"launcher-core/db"
)

// Kind is a relocatable resource of an install.
type Kind string

const (
	Game   Kind = "Game"
	Runner Kind = "Runner"
	DXVK   Kind = "DXVK"
	Prefix Kind = "Prefix"
)

// Kinds lists every relocatable kind.
var Kinds = []Kind{Game, Runner, DXVK, Prefix}

// ParseKind accepts a kind name in any case.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if strings.EqualFold(s, string(k)) {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Column returns the install column holding the kind's path.
func (k Kind) Column() (db.PathColumn, error) {
	switch k {
	case Game:
		return db.PathDirectory, nil
	case Runner:
		return db.PathRunner, nil
	case DXVK:
		return db.PathDxvk, nil
	case Prefix:
		return db.PathPrefix, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, string(k))
}
