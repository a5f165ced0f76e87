package changefeed

import "github.com/google/wire"

// ProviderSet is the wire provider set for the realtime hub.
var ProviderSet = wire.NewSet(NewHub)
