package web

import "github.com/google/wire"

// ProviderSet is the wire provider set for the web page
var ProviderSet = wire.NewSet(NewHandler)
