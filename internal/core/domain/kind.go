package domain

import "go.trai.ch/zerr"

// Kind is the closed set of artifacts a build target can produce.
type Kind uint8

const (
	// KindExecutable links objects into a program. It is the default kind.
	KindExecutable Kind = iota
	// KindObject compiles sources into a position independent object file.
	KindObject
	// KindStaticArchive bundles objects with the archiver.
	KindStaticArchive
	// KindSharedObject links objects into a shared library.
	KindSharedObject
	// KindProject builds the root binary target and everything it depends on.
	KindProject
)

// Kinds lists every valid kind in declaration order.
var Kinds = []Kind{KindExecutable, KindObject, KindStaticArchive, KindSharedObject, KindProject}

// ParseKind converts the configuration spelling of a kind.
// An empty string yields the default kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "", "exe":
		return KindExecutable, nil
	case "obj":
		return KindObject, nil
	case "static":
		return KindStaticArchive, nil
	case "shared":
		return KindSharedObject, nil
	case "bin":
		return KindProject, nil
	default:
		return 0, zerr.With(zerr.Wrap(ErrUnknownKind, "parse kind"), "kind", s)
	}
}

// String returns the configuration spelling of the kind.
func (k Kind) String() string {
	switch k {
	case KindExecutable:
		return "exe"
	case KindObject:
		return "obj"
	case KindStaticArchive:
		return "static"
	case KindSharedObject:
		return "shared"
	case KindProject:
		return "bin"
	default:
		return "unknown"
	}
}

// Valid reports whether k is one of the declared kinds.
func (k Kind) Valid() bool {
	return k <= KindProject
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, zerr.With(zerr.Wrap(ErrUnknownKind, "marshal kind"), "kind", int(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
