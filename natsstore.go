package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/vmihailenco/msgpack/v5"
)

const embeddedReadyTimeout = 5 * time.Second

// StartEmbeddedNATS runs an in-process JetStream server on a random loopback
// port. Callers connect with ns.ClientURL() and own the shutdown.
func StartEmbeddedNATS(storeDir string) (*server.Server, error) {
	ns, err := server.NewServer(&server.Options{
		Host:      "127.0.0.1",
		Port:      server.RANDOM_PORT,
		JetStream: true,
		StoreDir:  storeDir,
		NoSigs:    true,
	})
	if err != nil {
		return nil, fmt.Errorf("creating embedded nats: %w", err)
	}
	go ns.Start()
	if !ns.ReadyForConnections(embeddedReadyTimeout) {
		ns.Shutdown()
		return nil, errors.New("embedded nats did not become ready")
	}
	return ns, nil
}

// RoomSnapshot is the per-room record mirrored to the KV bucket
type RoomSnapshot struct {
	Room      RoomInfo      `json:"room" msgpack:"room"`
	Phase     string        `json:"phase" msgpack:"phase"`
	Turn      string        `json:"turn" msgpack:"turn"`
	Tick      uint64        `json:"tick" msgpack:"tick"`
	Tanks     []TankSummary `json:"tanks" msgpack:"tanks"`
	Winner    string        `json:"winner,omitempty" msgpack:"winner,omitempty"`
	UpdatedAt int64         `json:"updated_at" msgpack:"updated_at"`
}

// SnapshotStore mirrors room summaries into a JetStream key-value bucket so
// other processes can watch running games. A nil store does nothing.
type SnapshotStore struct {
	nc *nats.Conn
	kv jetstream.KeyValue
}

// OpenSnapshotStore connects to url and creates the bucket if needed
func OpenSnapshotStore(ctx context.Context, url, bucket string) (*SnapshotStore, error) {
	nc, err := nats.Connect(url, nats.Name(instrumentationName))
	if err != nil {
		return nil, fmt.Errorf("connecting to nats: %w", err)
	}
	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("creating jetstream context: %w", err)
	}
	kv, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      bucket,
		Description: "running artillery rooms",
		History:     1,
		TTL:         time.Hour,
	})
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("creating kv bucket %s: %w", bucket, err)
	}
	return &SnapshotStore{nc: nc, kv: kv}, nil
}

// Publish writes the snapshot under the room id
func (s *SnapshotStore) Publish(ctx context.Context, snap RoomSnapshot) error {
	if s == nil {
		return nil
	}
	data, err := msgpack.Marshal(snap)
	if err != nil {
		return err
	}
	_, err = s.kv.Put(ctx, snap.Room.ID, data)
	return err
}

// Get reads the last snapshot published for a room
func (s *SnapshotStore) Get(ctx context.Context, roomID string) (*RoomSnapshot, error) {
	if s == nil {
		return nil, ErrRoomNotFound
	}
	entry, err := s.kv.Get(ctx, roomID)
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	var snap RoomSnapshot
	if err := msgpack.Unmarshal(entry.Value(), &snap); err != nil {
		return nil, fmt.Errorf("decoding snapshot %s: %w", roomID, err)
	}
	return &snap, nil
}

// Remove deletes a room's key
func (s *SnapshotStore) Remove(ctx context.Context, roomID string) error {
	if s == nil {
		return nil
	}
	err := s.kv.Delete(ctx, roomID)
	if errors.Is(err, jetstream.ErrKeyNotFound) {
		return nil
	}
	return err
}

// Close drains the connection
func (s *SnapshotStore) Close() {
	if s == nil {
		return
	}
	s.nc.Close()
}
