package logger

import (
	"fmt"

	"go.uber.org/zap"
)

// Field helpers shared by the pipeline packages so warnings carry the same keys.

// Part tags a log entry with the source part name.
func Part(name string) zap.Field { return zap.String("part", name) }

// Split tags a log entry with the split (group) name.
func Split(name string) zap.Field { return zap.String("split", name) }

// Kind tags a log entry with a split or shape kind.
func Kind(k fmt.Stringer) zap.Field { return zap.Stringer("kind", k) }

// Mesh tags a log entry with a destination mesh key.
func Mesh(key string) zap.Field { return zap.String("mesh", key) }
