package bot

import "github.com/google/wire"

// ProviderSet is bot providers.
var ProviderSet = wire.NewSet(NewBotAPI, NewHandler, NewDailyCardJob)
