package main

import (
	. "github.com/saylorsolutions/modmake"
)

const (
	scryptencVersion = "0.1.0"
)

var scryptencVariants = [][2]string{
	{"windows", "amd64"},
	{"linux", "amd64"},
	{"linux", "arm64"},
	{"darwin", "amd64"},
	{"darwin", "arm64"},
}

func newBuild() *Build {
	b := NewBuild()
	b.Generate().DependsOnRunner("tidy", "", Go().ModTidy())

	scryptenc := NewAppBuild("scryptenc", "cmd/scryptenc", scryptencVersion)
	scryptenc.Build(func(gb *GoBuild) {
		gb.
			StripDebugSymbols().
			TrimPath().
			SetVariable("main", "version", scryptencVersion).
			Env("CGO_ENABLED", "0")
	})
	for _, v := range scryptencVariants {
		scryptenc.Variant(v[0], v[1])
	}
	b.ImportApp(scryptenc)
	return b
}

func main() {
	newBuild().Execute()
}
