package users

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

var (
	ErrNoUsers       = errors.New("users file contains no users")
	ErrDuplicateUser = errors.New("duplicate user name")
)

var dummyHash = sync.OnceValue(func() []byte {
	h, err := bcrypt.GenerateFromPassword([]byte("secretboard-dummy-password"), bcrypt.DefaultCost)
	if err != nil {
		panic(fmt.Sprintf("users: failed to build dummy hash: %v", err))
	}
	return h
})

var compareHash = bcrypt.CompareHashAndPassword

// Файл пользователей:
//
//	users:
//	  - name: alice
//	    password_hash: $2a$10$...
type fileFormat struct {
	Users []struct {
		Name         string `yaml:"name"`
		PasswordHash string `yaml:"password_hash"`
	} `yaml:"users"`
}

// Directory - источник личности для Basic-аутентификации
type Directory struct {
	hashes map[string][]byte
}

func LoadFile(path string) (*Directory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read users file: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Directory, error) {
	var f fileFormat
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse users file: %w", err)
	}

	if len(f.Users) == 0 {
		return nil, ErrNoUsers
	}

	d := &Directory{hashes: make(map[string][]byte, len(f.Users))}
	for _, u := range f.Users {
		if u.Name == "" || u.PasswordHash == "" {
			return nil, fmt.Errorf("user entry must have name and password_hash")
		}
		if _, exists := d.hashes[u.Name]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateUser, u.Name)
		}
		if _, err := bcrypt.Cost([]byte(u.PasswordHash)); err != nil {
			return nil, fmt.Errorf("invalid password hash for %s: %w", u.Name, err)
		}
		d.hashes[u.Name] = []byte(u.PasswordHash)
	}

	return d, nil
}

// New строит каталог из открытых паролей (удобно для тестов и разработки)
func New(passwords map[string]string, cost int) (*Directory, error) {
	d := &Directory{hashes: make(map[string][]byte, len(passwords))}
	for name, password := range passwords {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password for %s: %w", name, err)
		}
		d.hashes[name] = hash
	}
	return d, nil
}

// Для неизвестного имени сравнение идёт с dummyHash: время ответа не выдаёт,
// существует ли пользователь.
func (d *Directory) Authenticate(name, password string) bool {
	hash, ok := d.hashes[name]
	if !ok {
		_ = compareHash(dummyHash(), []byte(password))
		return false
	}
	return compareHash(hash, []byte(password)) == nil
}

func (d *Directory) Len() int {
	return len(d.hashes)
}
