package types

// OutputFormat selects how command results are printed
type OutputFormat string

const (
	OutputFormatJSON  OutputFormat = "json"
	OutputFormatTable OutputFormat = "table"
)

// GlobalFlags holds the persistent flags shared by all commands
type GlobalFlags struct {
	OutputFormat OutputFormat
	Config       string
	ProfilesDir  string
	LogFile      string
	Quiet        bool
	Verbose      bool
	Debug        bool
	DryRun       bool
	Yes          bool
	JSON         bool
}

type TableRenderer interface {
	Headers() []string
	Rows() [][]string
	EmptyMessage() string
}

type TableRenderable interface {
	AsTableRenderer() TableRenderer
}
