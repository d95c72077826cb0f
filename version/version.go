package version

import "runtime/debug"

// The version can be set at build time using something like:
// go build -ldflags "-X github.com/vsariola/pdgraph/version.Version=$(git describe --dirty)"

var Version string

// Hash is the short VCS revision the binary was built from, suffixed with
// -dirty if the working tree had local modifications.
var Hash = func() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	return revision(info.Settings)
}()

var VersionOrHash = func() string {
	if Version != "" {
		return Version
	}
	return Hash
}()

func revision(settings []debug.BuildSetting) string {
	var rev string
	modified := false
	for _, s := range settings {
		switch s.Key {
		case "vcs.revision":
			rev = s.Value
		case "vcs.modified":
			modified = s.Value == "true"
		}
	}
	if len(rev) > 7 {
		rev = rev[:7]
	}
	if rev != "" && modified {
		rev += "-dirty"
	}
	return rev
}
