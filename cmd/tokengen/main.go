// Command tokengen prints a bearer token for a claimant, signed with
// JWT_SECRET, for calling the hold and confirm routes locally.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/iliyamo/seat-commit-coordinator/internal/utils"
)

func main() {
	_ = godotenv.Load()

	claimant := flag.String("claimant", "", "claimant id placed in the sub claim")
	ttl := flag.Duration("ttl", time.Hour, "token lifetime")
	flag.Parse()

	tok, err := utils.NewAccessToken(os.Getenv("JWT_SECRET"), *claimant, *ttl)
	if err != nil {
		fmt.Fprintln(os.Stderr, "tokengen:", err)
		os.Exit(1)
	}
	fmt.Println(tok.Token)
}
