// Command whitelist-admin adds an email to the admin allow-list or deactivates it.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/XevilA/spu-nexus-sub000/internal/config"
	"github.com/XevilA/spu-nexus-sub000/internal/database"
	"github.com/XevilA/spu-nexus-sub000/internal/logger"
	"github.com/XevilA/spu-nexus-sub000/internal/service"
)

func main() {
	email := flag.String("email", "", "email to allow-list")
	deactivate := flag.Bool("deactivate", false, "deactivate the entry instead of adding it")
	flag.Parse()

	log := logger.New()

	if strings.TrimSpace(*email) == "" {
		fmt.Print("Enter email: ")
		input, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil {
			log.WithError(err).Fatal("Failed to read input")
		}
		*email = strings.TrimSpace(input)
	}

	cfg := config.Load()
	db, err := database.GetMainDB(cfg)
	if err != nil {
		log.WithError(err).Fatal("Database failed to initialize")
	}
	defer func() { _ = db.Close() }()

	identity := service.New(service.Deps{DB: db, Log: log}).Identity
	entry, err := identity.SetWhitelist(context.Background(), *email, !*deactivate)
	if err != nil {
		log.WithError(err).Fatal("Failed to update allow-list")
	}

	state := "active"
	if !entry.Active {
		state = "inactive"
	}
	fmt.Printf("%s is now %s on the admin allow-list\n", entry.Email, state)
}
