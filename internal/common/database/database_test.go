package database

import (
	"context"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studybuddy/internal/common/config"
)

func TestRebind(t *testing.T) {
	pg := &SQLClient{Dialect: DialectPostgres}
	assert.Equal(t, "UPDATE s SET a = $1 WHERE id = $2", pg.Rebind("UPDATE s SET a = ? WHERE id = ?"))

	lite := &SQLClient{Dialect: DialectSQLite}
	assert.Equal(t, "SELECT ? FROM s", lite.Rebind("SELECT ? FROM s"))
}

func TestNewSQL_SQLite(t *testing.T) {
	client, err := NewSQL(config.DatabaseConfig{
		Driver: "sqlite",
		SQLite: config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "students.db")},
	})
	require.NoError(t, err)
	defer client.Close()

	assert.Equal(t, DialectSQLite, client.Dialect)
	require.NoError(t, client.Ping(context.Background()))
}

func TestNewSQL_UnknownDriver(t *testing.T) {
	_, err := NewSQL(config.DatabaseConfig{Driver: "mysql"})
	assert.Error(t, err)
}

func TestPingRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := NewRedis(config.RedisConfig{Address: mr.Addr()})
	defer rdb.Close()

	assert.NoError(t, PingRedis(context.Background(), rdb))
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func TestPingElasticsearch(t *testing.T) {
	transport := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		h := http.Header{}
		h.Set("X-Elastic-Product", "Elasticsearch")
		return &http.Response{
			StatusCode: http.StatusOK,
			Header:     h,
			Body:       io.NopCloser(strings.NewReader(`{}`)),
		}, nil
	})

	es, err := NewElasticsearch(config.ElasticsearchConfig{URL: "http://es.local:9200"}, transport)
	require.NoError(t, err)
	assert.NoError(t, PingElasticsearch(context.Background(), es))
}
