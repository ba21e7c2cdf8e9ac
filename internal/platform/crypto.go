package platform

import (
	"crypto/fips140"
	"runtime"
	"runtime/debug"
	"strings"
)

// Crypto reports the version of the Go crypto stack linked into the running
// binary, with a comment naming the FIPS 140 mode and the boringcrypto
// experiment when they are active. It never fails; an unknown toolchain
// yields "unknown".
func Crypto() (version, comment string) {
	experiments := ""
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			if s.Key == "GOEXPERIMENT" {
				experiments = s.Value
			}
		}
	}
	return cryptoFrom(runtime.Version(), experiments, fips140.Enabled())
}

func cryptoFrom(goVersion, experiments string, fips bool) (version, comment string) {
	version = strings.TrimPrefix(goVersion, "go")
	if i := strings.IndexAny(version, " "); i >= 0 {
		version = version[:i]
	}
	if version == "" {
		version = "unknown"
	}

	var notes []string
	if fips {
		notes = append(notes, "fips140")
	}
	for _, exp := range strings.Split(experiments, ",") {
		if strings.TrimSpace(exp) == "boringcrypto" {
			notes = append(notes, "boringcrypto")
		}
	}
	return version, strings.Join(notes, ", ")
}

// GoVersion returns the toolchain version without its "go" prefix.
func GoVersion() string {
	v, _ := cryptoFrom(runtime.Version(), "", false)
	return v
}
