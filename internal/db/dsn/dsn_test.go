package dsn

import (
	"testing"

	"github.com/lostandfound-admin/lostandfound-admin/internal/config"
)

func TestCreate(t *testing.T) {
	tests := []struct {
		name string
		db   config.DB
		want string
	}{
		{
			name: "mysql",
			db: config.DB{
				Engine:   config.EngineMySQL,
				Host:     "db.local",
				Port:     3306,
				User:     "app",
				Password: "secret",
				Name:     "lostandfound",
				Extras:   "parseTime=True",
			},
			want: "app:secret@tcp(db.local:3306)/lostandfound?parseTime=True",
		},
		{
			name: "postgres",
			db: config.DB{
				Engine:   config.EnginePostgres,
				Host:     "db.local",
				Port:     5432,
				User:     "app",
				Password: "secret",
				Name:     "lostandfound",
				Extras:   "sslmode=disable",
			},
			want: "host=db.local port=5432 user=app password=secret dbname=lostandfound sslmode=disable",
		},
		{
			name: "sqlite with path",
			db: config.DB{
				Engine: config.EngineSQLite,
				Path:   "./lostandfound.db",
			},
			want: "./lostandfound.db",
		},
		{
			name: "sqlite without path falls back to memory",
			db: config.DB{
				Engine: config.EngineSQLite,
			},
			want: "file::memory:?cache=shared",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Config{DB: tt.db}

			if got := Create(&cfg); got != tt.want {
				t.Errorf("Create() = %q, want %q", got, tt.want)
			}
		})
	}
}
