package constants

type contextKey string

const (
	LoggerKey    contextKey = "logger"
	RequestStart contextKey = "requestStart"
	ParamsKey    contextKey = "params"
	AppKey       contextKey = "app"
	LocalizerKey contextKey = "localizer"
	LocaleKey    contextKey = "locale"
)

const (
	PoolKey contextKey = "pool"
	TxKey   contextKey = "tx"
)
