package helpers

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/onsi/gomega"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/marena/marena-api/internal/service"
)

// NewMovie returns a movie that passes validation
func NewMovie(name string) *service.Movie {
	return &service.Movie{Name: name, Score: 8.5, Genres: "Action", Year: 2020}
}

// WriteMemoryConfig writes a config selecting in-memory storage
func WriteMemoryConfig(dir string) string {
	return writeConfig(dir, "storage: memory\n")
}

// WriteDatabaseConfig writes a config pointing at db, with the password in a file
func WriteDatabaseConfig(dir string, db *PostgresInstance) string {
	passwordFile := filepath.Join(dir, "db-password")
	gomega.Expect(os.WriteFile(passwordFile, []byte(db.Password+"\n"), 0600)).To(gomega.Succeed())

	return writeConfig(dir, fmt.Sprintf(`storage: database
database:
  host: %s
  port: %d
  user: %s
  passwordFile: %s
  database: %s
  sslMode: disable
  maxOpenConns: 5
`, db.Host, db.Port, db.User, passwordFile, db.Database))
}

func writeConfig(dir, content string) string {
	path := filepath.Join(dir, "config.yaml")
	gomega.Expect(os.WriteFile(path, []byte(content), 0600)).To(gomega.Succeed())
	return path
}

// PostgresInstance describes a running test database
type PostgresInstance struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string

	container *postgres.PostgresContainer
}

// StartPostgres starts an empty PostgreSQL container. The schema is left to the server.
func StartPostgres(ctx context.Context) *PostgresInstance {
	const (
		user     = "marena"
		password = "marena"
		database = "marena"
	)

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase(database),
		postgres.WithUsername(user),
		postgres.WithPassword(password),
		postgres.BasicWaitStrategies(),
	)
	gomega.Expect(err).NotTo(gomega.HaveOccurred())

	host, err := container.Host(ctx)
	gomega.Expect(err).NotTo(gomega.HaveOccurred())
	port, err := container.MappedPort(ctx, "5432/tcp")
	gomega.Expect(err).NotTo(gomega.HaveOccurred())

	return &PostgresInstance{
		Host:      host,
		Port:      port.Int(),
		User:      user,
		Password:  password,
		Database:  database,
		container: container,
	}
}

// Terminate stops and removes the container
func (p *PostgresInstance) Terminate() {
	if p == nil || p.container == nil {
		return
	}
	gomega.Expect(tc.TerminateContainer(p.container)).To(gomega.Succeed())
}
