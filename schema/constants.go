package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for caching and run tracking.
	DatabaseBackend string

	// SeriesKind represents which daily count a series holds.
	SeriesKind string

	// SearchStrategy represents how each walk-forward step picks its hyperparameters.
	SearchStrategy string

	// ModelKind represents the regressor family fitted at each step.
	ModelKind string
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
	ExcelOut   OutputMode = "xlsx"
)

// All database backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// All series kinds supported.
const (
	DoneSeries SeriesKind = "Done"
	FlowSeries SeriesKind = "Flow"
)

// All search strategies supported.
const (
	FixedStrategy  SearchStrategy = "fixed"
	GridStrategy   SearchStrategy = "grid"
	RandomStrategy SearchStrategy = "random" // default
)

// All model kinds supported.
const (
	ForestModel ModelKind = "forest"
	BoostModel  ModelKind = "boost" // default
	RidgeModel  ModelKind = "ridge"
)

// Ticket statuses in workflow order.
const (
	RefinedStatus    = "Refined"
	ToDoStatus       = "To Do"
	InProgressStatus = "In Progress"
	InReviewStatus   = "In Review"
	DoneStatus       = "Done"
)

// Ticket table column names.
const (
	ColPI          = "PI"
	ColName        = "TicketName"
	ColStatus      = "TicketStatus"
	ColProject     = "TicketProject"
	ColTeam        = "TicketTeam"
	ColStatusDate  = "TicketStatusDate"
	ColCreatedDate = "TicketCreatedDate"
	ColFeature     = "TicketFeatureName"
	ColType        = "TicketType"
	ColPriority    = "TicketPriority"
	ColScope       = "TicketScope"
	ColTeamMembers = "TeamMembers"
	ColStoryPoint  = "TicketStoryPoint"

	ColDoneCount = "DoneTicketsCount"
	ColFlowCount = "FlowTicketsCount"
)

// DateFormat is the calendar date layout used in ticket tables.
const DateFormat = "2006-01-02"

// StatusOrder lists every status a ticket can progress through.
var StatusOrder = []string{RefinedStatus, ToDoStatus, InProgressStatus, InReviewStatus, DoneStatus}

// FlowStatuses are the statuses counted as work in flow.
var FlowStatuses = []string{RefinedStatus, InProgressStatus, ToDoStatus, InReviewStatus}

// TicketColumns is the column order of generated ticket tables.
var TicketColumns = []string{
	ColPI, ColName, ColStatus, ColProject, ColTeam, ColStatusDate, ColCreatedDate,
	ColFeature, ColType, ColPriority, ColScope, ColTeamMembers, ColStoryPoint,
}

// AllSeriesKinds returns a list of all supported series kinds.
var AllSeriesKinds = []SeriesKind{DoneSeries, FlowSeries}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
	ExcelOut:   {},
}

// ValidDatabaseBackends lists all valid database backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// ValidStrategies lists all valid search strategies.
var ValidStrategies = map[SearchStrategy]struct{}{
	FixedStrategy:  {},
	GridStrategy:   {},
	RandomStrategy: {},
}

// ValidModels lists all valid model kinds.
var ValidModels = map[ModelKind]struct{}{
	ForestModel: {},
	BoostModel:  {},
	RidgeModel:  {},
}
