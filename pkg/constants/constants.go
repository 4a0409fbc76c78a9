package constants

type ContextKey string

const (
	TxKey        ContextKey = "tx"
	PoolKey      ContextKey = "pool"
	LoggerKey    ContextKey = "logger"
	ParamsKey    ContextKey = "params"
	AppKey       ContextKey = "app"
	RequestStart ContextKey = "requestStart"

	SessionKey    ContextKey = "session"
	MembershipKey ContextKey = "membership"
	TenantKey     ContextKey = "tenant"
	UserKey       ContextKey = "user"
	SchemaKey     ContextKey = "schema"
)

// SharedSchema holds tables that are not owned by any single tenant.
const SharedSchema = "platform"
