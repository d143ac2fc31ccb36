package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kingpin/v2"
)

var version = "dev"

var (
	app = kingpin.New("repoguild", "Provision repository access grants on a GitHub-compatible forge")

	// Apply command
	applyCmd      = app.Command("apply", "Apply access grants from an entries CSV")
	applyFile     = applyCmd.Arg("file", "Entries CSV path (local or s3://bucket/key)").Required().String()
	applyOrg      = applyCmd.Flag("org", "Organization (overrides REPOGUILD_ORG)").String()
	applyDryRun   = applyCmd.Flag("dry-run", "Resolve and validate without issuing grants").Bool()
	applyParallel = applyCmd.Flag("parallel", "Number of units reconciled concurrently").Int()
	applyWatch    = applyCmd.Flag("watch", "Keep running and re-apply when the entries file changes").Bool()
	applyReport   = applyCmd.Flag("report", "Write a YAML run report to this path (local or s3://)").String()

	// Roles command
	rolesCmd = app.Command("roles", "Show the effective role catalog")
	rolesOrg = rolesCmd.Flag("org", "Organization (overrides REPOGUILD_ORG)").String()

	versionCmd = app.Command("version", "Print version")
)

func main() {
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	switch command {
	case applyCmd.FullCommand():
		os.Exit(handleApply())
	case rolesCmd.FullCommand():
		os.Exit(handleRoles())
	case versionCmd.FullCommand():
		fmt.Println(version)
	}
}
