package sdk

import (
	"github.com/BishopFox/orgtree/internal"
)

var sharedLogger = internal.TxtLogger()
