package constants

// HTTP headers and content types
const (
	HeaderContentType = "Content-Type"
	ContentTypeJSON   = "application/json"

	CacheControlHeader  = "Cache-Control"
	CacheControlNoCache = "no-cache, no-store, must-revalidate"
)

// Routes used by the backend router
const (
	RouteAPIPrefix      = "/api"
	RouteCatalog        = "/catalog"
	RouteDifficulty     = "/difficulty"
	RouteSimulations    = "/simulations"
	RouteSimulationByID = "/simulations/:id"
	RouteBatches        = "/batches"
	RouteBatchByID      = "/batches/:id"
	RouteVersion        = "/version"
	RouteHealth         = "/healthz"
)

// Common JSON response keys
const (
	JSONKeyError   = "error"
	JSONKeyMessage = "message"
	JSONKeyDetails = "details"
	JSONKeyStatus  = "status"
)

// Common error messages used across API handlers
const (
	ErrInvalidRequest         = "Invalid request"
	ErrInvalidLimit           = "limit must be a positive integer"
	ErrSimulationNotFound     = "Simulation not found"
	ErrBatchNotFound          = "Batch not found"
	ErrFailedRunSimulation    = "Failed to run simulation"
	ErrFailedRunBatch         = "Failed to run batch"
	ErrFailedFetchSimulation  = "Failed to fetch simulation"
	ErrFailedFetchBatch       = "Failed to fetch batch"
	ErrSimulationTimedOut     = "Simulation timed out"
	ErrTooManyRuns            = "Too many runs requested"
	ErrPartyEncounterRequired = "party and encounter query parameters are required"
)

// Logging field names
const (
	LogFieldSimulationID = "simulation_id"
	LogFieldBatchID      = "batch_id"
	LogFieldSessionID    = "session_id"
	LogFieldSeed         = "seed"
	LogFieldOutcome      = "outcome"
	LogFieldRounds       = "rounds"
	LogFieldRuns         = "runs"
	LogFieldSource       = "source"
	LogFieldName         = "name"
	LogFieldKey          = "key"
	LogFieldAddr         = "addr"
	LogFieldPath         = "path"
)
