// connections.go manages saved database connection profiles so users
// can reconnect without retyping credentials. Profiles live in the
// encrypted KV store because they carry passwords.
package config

import (
	"encoding/json"
	"fmt"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/DachengChen/pgstudio/db"
	"github.com/DachengChen/pgstudio/kv"
	"github.com/DachengChen/pgstudio/ssh"
)

// connectionsKey is the KV document holding all saved profiles.
const connectionsKey = "connections"

// Connection is a named, saveable database connection profile.
type Connection struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Host     string     `json:"host"`
	Port     int        `json:"port"`
	User     string     `json:"user"`
	Password string     `json:"password,omitempty"`
	Database string     `json:"database"`
	SSLMode  string     `json:"sslMode"`
	SSH      ssh.Config `json:"ssh,omitempty"`
}

// Validate checks the fields a profile needs before it can be saved.
func (c Connection) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Name, validation.Required),
		validation.Field(&c.Host, validation.Required),
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
		validation.Field(&c.User, validation.Required),
		validation.Field(&c.Database, validation.Required),
	)
}

// DBConfig maps the profile to the connection settings db.Connect expects.
func (c Connection) DBConfig() db.Config {
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return db.Config{
		Host:     c.Host,
		Port:     c.Port,
		User:     c.User,
		Password: c.Password,
		Database: c.Database,
		SSLMode:  sslMode,
		SSH:      c.SSH,
	}
}

// String renders the profile for listings, without the password.
func (c Connection) String() string {
	return c.Name + " (" + c.User + "@" + c.Host + ":" + strconv.Itoa(c.Port) + "/" + c.Database + ")"
}

// ConnectionStore manages saved connection profiles.
type ConnectionStore struct {
	kv kv.Store
}

// NewConnectionStore creates the store over the given persistence backend.
func NewConnectionStore(store kv.Store) *ConnectionStore {
	return &ConnectionStore{kv: store}
}

// List returns all saved profiles in saved order.
func (s *ConnectionStore) List() ([]Connection, error) {
	raw, ok, err := s.kv.Get(connectionsKey)
	if err != nil {
		return nil, fmt.Errorf("read connections: %w", err)
	}
	if !ok {
		return []Connection{}, nil
	}
	var conns []Connection
	if err := json.Unmarshal(raw, &conns); err != nil {
		return nil, fmt.Errorf("parse connections: %w", err)
	}
	return conns, nil
}

// Save validates and upserts a profile by id, assigning an id to new
// profiles. Returns the stored profile.
func (s *ConnectionStore) Save(conn Connection) (Connection, error) {
	if err := conn.Validate(); err != nil {
		return Connection{}, err
	}
	conns, err := s.List()
	if err != nil {
		return Connection{}, err
	}

	if conn.ID == "" {
		conn.ID = uuid.NewString()
		conns = append(conns, conn)
	} else {
		found := false
		for i := range conns {
			if conns[i].ID == conn.ID {
				conns[i] = conn
				found = true
				break
			}
		}
		if !found {
			conns = append(conns, conn)
		}
	}

	if err := s.kv.Set(connectionsKey, conns); err != nil {
		return Connection{}, fmt.Errorf("write connections: %w", err)
	}
	return conn, nil
}

// Get retrieves a profile by id.
func (s *ConnectionStore) Get(id string) (Connection, bool, error) {
	conns, err := s.List()
	if err != nil {
		return Connection{}, false, err
	}
	for _, c := range conns {
		if c.ID == id {
			return c, true, nil
		}
	}
	return Connection{}, false, nil
}

// Delete removes a profile, reporting whether it existed.
func (s *ConnectionStore) Delete(id string) (bool, error) {
	conns, err := s.List()
	if err != nil {
		return false, err
	}
	for i, c := range conns {
		if c.ID == id {
			conns = append(conns[:i], conns[i+1:]...)
			if err := s.kv.Set(connectionsKey, conns); err != nil {
				return false, fmt.Errorf("write connections: %w", err)
			}
			return true, nil
		}
	}
	return false, nil
}

// DefaultConnection returns a profile with sensible defaults.
func DefaultConnection() Connection {
	return Connection{
		Host:     "localhost",
		Port:     5432,
		User:     "postgres",
		Database: "postgres",
		SSLMode:  "disable",
		SSH:      ssh.Config{Port: 22},
	}
}
