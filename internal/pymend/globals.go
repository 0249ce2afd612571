package pymend

import (
	"errors"
	"runtime"
	"sync/atomic"

	"github.com/gookit/color"
)

// GLOBAL STATE
// We use a value of 1 for critical and 0 for non-critical/default.
var isCriticalAtomic atomic.Int32

// Global variables
var (
	rootDir      string
	StateDir     string
	BackupDir    string
	LogDir       string
	tmpDir       string
	Debug        bool
	ConfigFile   = "/etc/pymend.conf"
	LockFile     = "/var/lib/pymend/pymend.lock"
	version      = "dev" // default version; overridden at build time
	arch         = runtime.GOARCH
	buildDate    = "unknown" // overridden at build time
	pipOverride  string
	compressMode string

	errPackageNotInstalled = errors.New("package not installed")
	errPipNotFound         = errors.New("no usable pip executable found")
	errBackupNotFound      = errors.New("backup not found")

	// Global executors (declared, to be assigned in Main)
	UserExec *Executor
	RootExec *Executor
)

// color helpers
var (
	colInfo    = color.Info // style provided by gookit/color
	colWarn    = color.Warn
	colError   = color.Error
	colSuccess = color.HEX("#1976D2")
	colArrow   = color.HEX("#FFEB3B")
	colNote    = color.Tag("notice")
)
