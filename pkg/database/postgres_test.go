package database

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/course-catalog-api/pkg/config"
)

func TestDSN(t *testing.T) {
	dsn := DSN(config.DatabaseConfig{
		Host:     "db",
		Port:     5433,
		User:     "catalog",
		Password: "secret",
		Name:     "course_catalog",
		SSLMode:  "require",
	})

	assert.Equal(t, "host=db port=5433 user=catalog password=secret dbname=course_catalog sslmode=require", dsn)
}
