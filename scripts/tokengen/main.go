// Command tokengen mints an API token and prints the insert statement plus
// the one-time bearer value.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/bodycraft-erp/bodycraft-erp/internal/auth"
)

func main() {
	actor := flag.String("actor", "", "actor identity bound to the token")
	flag.Parse()

	if *actor == "" {
		fmt.Fprintln(os.Stderr, "usage: tokengen -actor <identity>")
		os.Exit(2)
	}

	token, bearer, err := auth.GenerateToken(*actor)
	if err != nil {
		fmt.Fprintln(os.Stderr, "generate token:", err)
		os.Exit(1)
	}

	fmt.Printf("INSERT INTO api_tokens (id, actor, secret_hash) VALUES ('%s', '%s', '%s');\n",
		token.ID, token.Actor, token.SecretHash)
	fmt.Printf("\nAuthorization: Bearer %s\n", bearer)
}
