package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/fatih/color"

	"github.com/kazz187/repoguild/internal/catalog"
	"github.com/kazz187/repoguild/internal/config"
	"github.com/kazz187/repoguild/internal/forge"
)

func handleRoles() int {
	env, err := config.LoadEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return 1
	}
	setupLogger(env)

	org := *rolesOrg
	if org == "" {
		org = env.Org
	}
	if org == "" {
		fmt.Fprintln(os.Stderr, "Error: no organization given (use --org or REPOGUILD_ORG)")
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := forge.NewHTTPClient(env.APIURL, env.Token, env.Timeout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating forge client: %v\n", err)
		return 1
	}
	if err := client.Organization(ctx, org); err != nil {
		fmt.Fprintf(os.Stderr, "Error validating organization %s: %v\n", org, err)
		return 1
	}

	cat := catalog.Load(ctx, client, org)

	color.New(color.Bold).Println("Standard roles (highest first):")
	for _, token := range catalog.Ladder {
		fmt.Printf("  %s\n", token)
	}

	customs := cat.CustomRoleNames()
	sort.Strings(customs)
	color.New(color.Bold).Printf("\nCustom roles in %s:\n", org)
	if len(customs) == 0 {
		fmt.Println("  (none)")
		return 0
	}
	for _, name := range customs {
		fmt.Printf("  %s\n", name)
	}
	return 0
}
