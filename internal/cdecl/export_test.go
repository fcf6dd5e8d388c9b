package cdecl

import "modgen/internal/source"

var zeroPos source.Pos
