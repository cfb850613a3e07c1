// Package manifest loads per-app install manifests (appmanifest_*.acf)
// and classifies them for backup eligibility.
package manifest

// StateFullyInstalled is the StateFlags value Steam writes once an app is
// fully installed with no pending download, update, or verify. Any other
// value means the install is mid-transfer or paused and must not be
// backed up.
const StateFullyInstalled = 4

// FilePrefix and FileSuffix delimit manifest filenames: appmanifest_<id>.acf.
const (
	FilePrefix = "appmanifest_"
	FileSuffix = ".acf"
)

// Record is one parsed manifest, either Complete or Partial. The two
// variants are closed: nothing outside this package can add a third.
type Record interface {
	// AppID returns the app's stable numeric-string identifier. For a
	// Partial record this is recovered from the manifest filename.
	AppID() string
	// DisplayName returns a human-facing name for logs and reports.
	DisplayName() string

	isRecord()
}

// Complete is a fully parsed manifest record.
type Complete struct {
	ID         string
	Name       string
	InstallDir string
	BuildID    string
	StateFlags int
	Library    string
}

func (c Complete) AppID() string       { return c.ID }
func (c Complete) DisplayName() string { return c.Name }
func (Complete) isRecord()             {}

// Partial is the degraded record used when a manifest parses to no usable
// fields. It carries only what can be recovered from the filename.
type Partial struct {
	ID   string
	Name string
}

func (p Partial) AppID() string       { return p.ID }
func (p Partial) DisplayName() string { return p.Name }
func (Partial) isRecord()             {}

// Reason explains a classification decision.
type Reason int

const (
	// FullyInstalled marks a record eligible for backup.
	FullyInstalled Reason = iota
	// Excluded marks a record skipped by the app-id exclusion set.
	Excluded
	// Incomplete marks a record whose install is not fully settled.
	Incomplete
	// Corrupt marks a manifest that parsed to no usable fields.
	Corrupt
)

func (r Reason) String() string {
	switch r {
	case FullyInstalled:
		return "fully installed"
	case Excluded:
		return "excluded"
	case Incomplete:
		return "incomplete"
	case Corrupt:
		return "corrupt"
	default:
		return "unknown"
	}
}

// Classification is the outcome for one manifest file. Every manifest
// yields exactly one Classification.
type Classification struct {
	Record   Record
	Eligible bool
	Reason   Reason
}
