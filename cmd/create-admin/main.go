// Command create-admin allow-lists an email and creates an admin account for it with
// random credentials.
package main

import (
	"bufio"
	"context"
	"crypto/rand"
	"encoding/hex"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/XevilA/spu-nexus-sub000/internal/config"
	"github.com/XevilA/spu-nexus-sub000/internal/database"
	"github.com/XevilA/spu-nexus-sub000/internal/logger"
	"github.com/XevilA/spu-nexus-sub000/internal/service"
)

// generateRandomString creates a random hex string of length 2n
func generateRandomString(n int) string {
	bytes := make([]byte, n)
	if _, err := rand.Read(bytes); err != nil {
		panic(err)
	}
	return hex.EncodeToString(bytes)
}

func main() {
	email := flag.String("email", "", "email of the new admin")
	flag.Parse()

	log := logger.New()

	if strings.TrimSpace(*email) == "" {
		fmt.Print("Enter admin email: ")
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

	ctx := context.Background()
	identity := service.New(service.Deps{DB: db, Log: log}).Identity

	if _, err := identity.SetWhitelist(ctx, *email, true); err != nil {
		log.WithError(err).Fatal("Failed to allow-list email")
	}

	username := "admin_" + generateRandomString(4)
	password := generateRandomString(8)
	admin, err := identity.RegisterAdmin(ctx, *email, username, password)
	if err != nil {
		log.WithError(err).Fatal("Failed to create admin")
	}

	// Print credentials (only show plain password here!)
	fmt.Println("Admin credentials generated successfully!")
	fmt.Println("======================================")
	fmt.Printf("Email:    %s\n", *admin.Email)
	fmt.Printf("Username: %s\n", admin.Username)
	fmt.Printf("Password: %s\n", password)
	fmt.Println("======================================")
}
