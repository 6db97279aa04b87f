// Package redis stores the realtime tree in Redis and fans changes out over
// pub/sub.
//
// Layout, with the configured prefix (default "rt:"):
//
//	rt:doc:<path>   JSON document of a record (session, message, ...)
//	rt:idx:<path>   set of child segment names below <path>
//	rt:changes      channel; payload is the path that was written
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"chato-dashboard/internal/realtime/core/domain"
	"chato-dashboard/internal/realtime/core/ports"

	"github.com/redis/go-redis/v9"
)

var (
	ErrFeedClosed       = errors.New("realtime change feed closed")
	ErrAncestorDocument = errors.New("path lies inside an existing document")
)

type Store struct {
	client *redis.Client
	prefix string
}

var (
	_ ports.StorePort  = (*Store)(nil)
	_ ports.WriterPort = (*Store)(nil)
)

// NewStore connects to redisURL and verifies the connection.
func NewStore(redisURL, prefix string) (*Store, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return NewStoreWithClient(client, prefix), nil
}

func NewStoreWithClient(client *redis.Client, prefix string) *Store {
	return &Store{client: client, prefix: prefix}
}

func (s *Store) docKey(p domain.Path) string { return s.prefix + "doc:" + p.String() }
func (s *Store) idxKey(p domain.Path) string { return s.prefix + "idx:" + p.String() }
func (s *Store) channel() string             { return s.prefix + "changes" }

func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Listen subscribes to the change feed before reading the initial value, so
// no write between the two is missed.
func (s *Store) Listen(ctx context.Context, path domain.Path, onValue func([]byte), onError func(error)) (func(), error) {
	pubsub := s.client.Subscribe(ctx, s.channel())
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("subscribe changes: %w", err)
	}

	raw, err := s.Get(ctx, path)
	if err != nil {
		_ = pubsub.Close()
		return nil, err
	}
	onValue(raw)

	lctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		feed := pubsub.Channel()
		for {
			select {
			case <-lctx.Done():
				return
			case msg, ok := <-feed:
				if !ok {
					if lctx.Err() == nil && onError != nil {
						onError(ErrFeedClosed)
					}
					return
				}
				if !domain.Path(msg.Payload).Related(path) {
					continue
				}
				raw, err := s.Get(lctx, path)
				if lctx.Err() != nil {
					return
				}
				if err != nil {
					if onError != nil {
						onError(err)
					}
					return
				}
				onValue(raw)
			}
		}
	}()

	var once sync.Once
	stop := func() {
		once.Do(func() {
			cancel()
			_ = pubsub.Close()
			<-done
		})
	}
	return stop, nil
}

// Get returns the JSON value at path ("null" when absent).
func (s *Store) Get(ctx context.Context, path domain.Path) ([]byte, error) {
	v, found, err := s.readNode(ctx, path)
	if err != nil {
		return nil, err
	}
	if !found {
		return []byte("null"), nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", path, err)
	}
	return raw, nil
}

// Set stores value as the document at path, replacing whatever was below it.
func (s *Store) Set(ctx context.Context, path domain.Path, value any) error {
	if value == nil {
		return s.Remove(ctx, path)
	}
	if err := s.checkNoAncestorDoc(ctx, path); err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode value: %w", err)
	}
	var stale []string
	if err := s.collectKeys(ctx, path, &stale); err != nil {
		return err
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, stale...)
		pipe.Set(ctx, s.docKey(path), raw, 0)
		s.linkAncestors(ctx, pipe, path)
		pipe.Publish(ctx, s.channel(), path.String())
		return nil
	})
	if err != nil {
		return fmt.Errorf("set %s: %w", path, err)
	}
	return nil
}

// Update writes each field as a child document of path and publishes once.
func (s *Store) Update(ctx context.Context, path domain.Path, fields map[string]any) error {
	if err := s.checkNoAncestorDoc(ctx, path); err != nil {
		return err
	}
	type write struct {
		path  domain.Path
		raw   []byte
		stale []string
	}
	writes := make([]write, 0, len(fields))
	for k, v := range fields {
		child, err := path.Child(k)
		if err != nil {
			return err
		}
		w := write{path: child}
		if err := s.collectKeys(ctx, child, &w.stale); err != nil {
			return err
		}
		if v != nil {
			if w.raw, err = json.Marshal(v); err != nil {
				return fmt.Errorf("encode field %s: %w", k, err)
			}
		}
		writes = append(writes, w)
	}

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, w := range writes {
			pipe.Del(ctx, w.stale...)
			if w.raw == nil {
				pipe.SRem(ctx, s.idxKey(path), w.path.Last())
				continue
			}
			pipe.Set(ctx, s.docKey(w.path), w.raw, 0)
			s.linkAncestors(ctx, pipe, w.path)
		}
		pipe.Publish(ctx, s.channel(), path.String())
		return nil
	})
	if err != nil {
		return fmt.Errorf("update %s: %w", path, err)
	}
	return nil
}

// Remove deletes path and everything below it. Like Set, it refuses a path
// inside a stored document.
func (s *Store) Remove(ctx context.Context, path domain.Path) error {
	if err := s.checkNoAncestorDoc(ctx, path); err != nil {
		return err
	}
	var stale []string
	if err := s.collectKeys(ctx, path, &stale); err != nil {
		return err
	}

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, stale...)
		if parent, ok := path.Parent(); ok {
			pipe.SRem(ctx, s.idxKey(parent), path.Last())
		}
		pipe.Publish(ctx, s.channel(), path.String())
		return nil
	})
	if err != nil {
		return fmt.Errorf("remove %s: %w", path, err)
	}
	return nil
}

func (s *Store) linkAncestors(ctx context.Context, pipe redis.Pipeliner, path domain.Path) {
	for p := path; ; {
		parent, ok := p.Parent()
		if !ok {
			return
		}
		pipe.SAdd(ctx, s.idxKey(parent), p.Last())
		p = parent
	}
}

func (s *Store) checkNoAncestorDoc(ctx context.Context, path domain.Path) error {
	segs := path.Segments()
	if len(segs) < 2 {
		return nil
	}
	keys := make([]string, 0, len(segs)-1)
	for i := 1; i < len(segs); i++ {
		keys = append(keys, s.docKey(domain.Path(strings.Join(segs[:i], "/"))))
	}
	n, err := s.client.Exists(ctx, keys...).Result()
	if err != nil {
		return fmt.Errorf("check ancestors of %s: %w", path, err)
	}
	if n > 0 {
		return fmt.Errorf("%w: %s", ErrAncestorDocument, path)
	}
	return nil
}

func (s *Store) collectKeys(ctx context.Context, path domain.Path, keys *[]string) error {
	*keys = append(*keys, s.docKey(path), s.idxKey(path))
	members, err := s.client.SMembers(ctx, s.idxKey(path)).Result()
	if err != nil {
		return fmt.Errorf("list children of %s: %w", path, err)
	}
	for _, m := range members {
		if err := s.collectKeys(ctx, domain.Path(path.String()+"/"+m), keys); err != nil {
			return err
		}
	}
	return nil
}

// readNode resolves path either inside the nearest document at or above it,
// or by assembling the child index below it.
func (s *Store) readNode(ctx context.Context, path domain.Path) (any, bool, error) {
	segs := path.Segments()
	keys := make([]string, len(segs))
	for i := range segs {
		keys[i] = s.docKey(domain.Path(strings.Join(segs[:i+1], "/")))
	}
	vals, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, false, fmt.Errorf("read %s: %w", path, err)
	}
	for i, v := range vals {
		str, ok := v.(string)
		if !ok {
			continue
		}
		var doc any
		if err := json.Unmarshal([]byte(str), &doc); err != nil {
			return nil, false, fmt.Errorf("decode %s: %w", keys[i], err)
		}
		return descend(doc, segs[i+1:])
	}
	return s.readBranch(ctx, path)
}

// readBranch assembles the tree below path level by level: one pipelined
// SMEMBERS batch and one MGET per depth. Empty branches are dropped.
func (s *Store) readBranch(ctx context.Context, path domain.Path) (any, bool, error) {
	type branch struct {
		path   domain.Path
		name   string
		node   map[string]any
		parent int
	}
	type child struct {
		parent int
		name   string
		path   domain.Path
	}

	branches := []branch{{path: path, node: map[string]any{}, parent: -1}}
	level := []int{0}
	for len(level) > 0 {
		pipe := s.client.Pipeline()
		cmds := make([]*redis.StringSliceCmd, len(level))
		for i, b := range level {
			cmds[i] = pipe.SMembers(ctx, s.idxKey(branches[b].path))
		}
		if _, err := pipe.Exec(ctx); err != nil {
			return nil, false, fmt.Errorf("list children of %s: %w", path, err)
		}

		var children []child
		for i, b := range level {
			for _, m := range cmds[i].Val() {
				children = append(children, child{parent: b, name: m, path: domain.Path(branches[b].path.String() + "/" + m)})
			}
		}
		if len(children) == 0 {
			break
		}

		keys := make([]string, len(children))
		for i, c := range children {
			keys[i] = s.docKey(c.path)
		}
		vals, err := s.client.MGet(ctx, keys...).Result()
		if err != nil {
			return nil, false, fmt.Errorf("read below %s: %w", path, err)
		}

		var next []int
		for i, c := range children {
			str, ok := vals[i].(string)
			if !ok {
				branches = append(branches, branch{path: c.path, name: c.name, node: map[string]any{}, parent: c.parent})
				next = append(next, len(branches)-1)
				continue
			}
			var doc any
			if err := json.Unmarshal([]byte(str), &doc); err != nil {
				return nil, false, fmt.Errorf("decode %s: %w", c.path, err)
			}
			branches[c.parent].node[c.name] = doc
		}
		level = next
	}

	// children come after their parents, so walking backwards links bottom up
	for i := len(branches) - 1; i > 0; i-- {
		if b := branches[i]; len(b.node) > 0 {
			branches[b.parent].node[b.name] = b.node
		}
	}
	if len(branches[0].node) == 0 {
		return nil, false, nil
	}
	return branches[0].node, true, nil
}

func descend(node any, segs []string) (any, bool, error) {
	for _, seg := range segs {
		m, ok := node.(map[string]any)
		if !ok {
			return nil, false, nil
		}
		if node, ok = m[seg]; !ok {
			return nil, false, nil
		}
	}
	return node, true, nil
}
