package postgres

import (
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

func TestOptions_connString(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		appName string
	}{
		{
			name:    "reserved characters in credentials",
			opts:    Options{Username: "user@corp", Password: "p@ss word/1?#", Host: "db.local", Port: 5433, Database: "emailcount", SslMode: "require"},
			appName: DefaultApplicationName,
		},
		{
			name:    "custom application name",
			opts:    Options{Username: "u", Password: "p", Host: "::1", Port: 5432, Database: "db", ApplicationName: "worker-1"},
			appName: "worker-1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := pgxpool.ParseConfig(tt.opts.connString())
			require.NoError(t, err)

			cc := cfg.ConnConfig
			require.Equal(t, tt.opts.Username, cc.User)
			require.Equal(t, tt.opts.Password, cc.Password)
			require.Equal(t, tt.opts.Host, cc.Host)
			require.Equal(t, uint16(tt.opts.Port), cc.Port) //nolint: gosec
			require.Equal(t, tt.opts.Database, cc.Database)
			require.Equal(t, tt.appName, cc.RuntimeParams["application_name"])
		})
	}
}
