package eventbus

import "github.com/google/wire"

// ProviderSet is the wire provider set for the in-process bus carrying row
// change events.
var ProviderSet = wire.NewSet(NewBus)
