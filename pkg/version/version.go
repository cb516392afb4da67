package version

import (
	"fmt"
	"runtime"
)

// Set with -ldflags "-X github.com/dl-alexandre/gdsync/pkg/version.Version=..."
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

// Info is what `gdsync version` reports
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"gitCommit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
	Platform  string `json:"platform"`
}

func Get() *Info {
	return &Info{
		Version:   Version,
		GitCommit: GitCommit,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}

func (i *Info) String() string {
	return fmt.Sprintf("gdsync %s (%s) built %s", i.Version, i.GitCommit, i.BuildTime)
}

// UserAgent identifies gdsync to the Drive API
func UserAgent() string {
	return fmt.Sprintf("gdsync/%s (%s/%s)", Version, runtime.GOOS, runtime.GOARCH)
}
