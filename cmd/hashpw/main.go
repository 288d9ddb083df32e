// hashpw печатает bcrypt-хеш пароля для файла пользователей.
//
//	echo -n 'secret' | go run ./cmd/hashpw -name alice
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

type entry struct {
	Name         string `yaml:"name"`
	PasswordHash string `yaml:"password_hash"`
}

func main() {
	name := flag.String("name", "", "user name")
	cost := flag.Int("cost", bcrypt.DefaultCost, "bcrypt cost")
	flag.Parse()

	if *name == "" {
		fmt.Fprintln(os.Stderr, "-name is required")
		os.Exit(2)
	}

	password, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && password == "" {
		fmt.Fprintf(os.Stderr, "failed to read password: %v\n", err)
		os.Exit(1)
	}
	password = strings.TrimRight(password, "\r\n")

	hash, err := bcrypt.GenerateFromPassword([]byte(password), *cost)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to hash password: %v\n", err)
		os.Exit(1)
	}

	out, err := yaml.Marshal([]entry{{Name: *name, PasswordHash: string(hash)}})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to encode entry: %v\n", err)
		os.Exit(1)
	}
	os.Stdout.Write(out)
}
