// Package main is a utility for generating bcrypt hashes of passwords.
// The server stores only bcrypt hashes — never plaintext — so this tool is
// used when manually seeding or repairing user records in the database
// without running the full server.
package main

import (
	"fmt"
	"os"

	"github.com/taskboard/taskboard/internal/auth"
)

func main() {
	password := "password"
	if len(os.Args) > 1 {
		password = os.Args[1]
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		panic(err)
	}
	fmt.Println(hash)
}
