package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/dmitrijs2005/docvault/internal/buildinfo"
	"github.com/dmitrijs2005/docvault/internal/flagx"
	"github.com/dmitrijs2005/docvault/internal/logging"
	"github.com/dmitrijs2005/docvault/internal/server"
	"github.com/dmitrijs2005/docvault/internal/server/auth"
	"github.com/dmitrijs2005/docvault/internal/server/config"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	cfg := config.LoadConfig()

	// -issue-token <user id> prints a bearer token for that user and exits.
	var issueFor string
	fs := flag.NewFlagSet("tools", flag.ContinueOnError)
	fs.StringVar(&issueFor, "issue-token", "", "print an access token for the given user id and exit")
	if err := flagx.ParseKnown(fs, os.Args[1:]); err != nil {
		log.Fatalf("%v", err)
	}

	if issueFor != "" {
		token, err := auth.GenerateToken(issueFor, []byte(cfg.SecretKey), cfg.AccessTokenValidityDuration)
		if err != nil {
			log.Fatalf("%v", err)
		}
		fmt.Println(token)
		return
	}

	ctx := context.Background()
	logger := logging.New(cfg.LogFormat, cfg.LogLevel)

	app, err := server.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Printf("%v", err)
		return
	}

	app.Run(ctx)

}
