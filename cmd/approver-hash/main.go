// Command approver-hash prints the APPROVER_TOKEN_HASH value for a token read
// from stdin.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"outreach-service/internal/auth"

	log "github.com/sirupsen/logrus"
)

func main() {
	fmt.Fprint(os.Stderr, "Approver token: ")
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		log.WithError(err).Fatal("Could not read token")
	}

	token := strings.TrimSpace(line)
	if len(token) < 16 {
		log.Fatal("Approver token must be at least 16 characters")
	}

	hash, err := auth.HashToken(token)
	if err != nil {
		log.WithError(err).Fatal("Could not hash token")
	}
	fmt.Println(hash)
}
