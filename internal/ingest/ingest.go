// Package ingest applies document mutation events from a Kafka topic to the
// search index, letting an upstream system of record drive the corpus
// without going through the HTTP API.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kgoto/aliasearch/internal/engine"
	"github.com/kgoto/aliasearch/pkg/kafka"
	"github.com/kgoto/aliasearch/pkg/logger"
)

// Mutator is the slice of the document store the consumer needs. Implemented
// by server.Store, which serialises engine access.
type Mutator interface {
	Add(ctx context.Context, name string, aliases []string)
	Update(ctx context.Context, name string, aliases []string) bool
	Remove(ctx context.Context, name string) bool
	ReplaceAll(ctx context.Context, docs []engine.Document)
	Clear(ctx context.Context)
}

// Event is a single document mutation on the wire.
type Event struct {
	Op        string            `json:"op"` // add | update | remove | replace_all | clear
	Name      string            `json:"name,omitempty"`
	Aliases   []string          `json:"aliases,omitempty"`
	Documents []engine.Document `json:"documents,omitempty"`
}

// Handler returns a kafka.MessageHandler that applies events to the store.
// Unknown operations and missing-name updates are logged and skipped; a
// poisoned message must not wedge the consumer.
func Handler(store Mutator) kafka.MessageHandler {
	log := logger.WithComponent("ingest")
	return func(ctx context.Context, key []byte, value []byte) error {
		ev, err := decodeEvent(value)
		if err != nil {
			return err
		}
		switch ev.Op {
		case "add":
			store.Add(ctx, ev.Name, ev.Aliases)
			log.Debug("document added", "name", ev.Name, "aliases", len(ev.Aliases))
		case "update":
			if !store.Update(ctx, ev.Name, ev.Aliases) {
				log.Warn("update for unknown document", "name", ev.Name)
			}
		case "remove":
			if !store.Remove(ctx, ev.Name) {
				log.Warn("remove for unknown document", "name", ev.Name)
			}
		case "replace_all":
			store.ReplaceAll(ctx, ev.Documents)
			log.Info("corpus replaced", "documents", len(ev.Documents))
		case "clear":
			store.Clear(ctx)
			log.Info("corpus cleared")
		default:
			log.Warn("unknown event op, skipping", "op", ev.Op, "key", string(key))
		}
		return nil
	}
}

func decodeEvent(value []byte) (Event, error) {
	var ev Event
	if err := json.Unmarshal(value, &ev); err != nil {
		return Event{}, fmt.Errorf("decoding mutation event: %w", err)
	}
	if ev.Op == "" {
		return Event{}, fmt.Errorf("mutation event missing op")
	}
	if (ev.Op == "add" || ev.Op == "update" || ev.Op == "remove") && ev.Name == "" {
		return Event{}, fmt.Errorf("mutation event %q missing name", ev.Op)
	}
	return ev, nil
}
