package node

import (
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/tidwall/buntdb"
)

// keys are collections joined with a separator, like "cnr##<cid>"
const (
	collectionSepa = "##"
	collContainers = "cnr"
	collNames      = "name"
	collMeta       = "meta"
	collPayloads   = "pld"
)

var (
	errNotFound     = errors.New("not found")
	errNameConflict = errors.New("container name is already taken")
)

type containerRecord struct {
	ID              string    `json:"id"`
	Owner           string    `json:"owner"`
	Name            string    `json:"name"`
	PlacementPolicy string    `json:"placement_policy"`
	BasicACL        string    `json:"basic_acl"`
	NameGlobalScope bool      `json:"name_global_scope"`
	Created         time.Time `json:"created"`
}

type objectRecord struct {
	ID         string            `json:"id"`
	Container  string            `json:"container"`
	Owner      string            `json:"owner"`
	Attributes map[string]string `json:"attributes"`
	Hash       string            `json:"hash"`
	Size       int               `json:"size"`
	Created    time.Time         `json:"created"`
}

func key(parts ...string) string {
	return strings.Join(parts, collectionSepa)
}

// store keeps containers and objects in buntdb
type store struct {
	db *buntdb.DB
}

// openStore opens buntdb at path, ":memory:" keeps everything in memory
func openStore(path string) (*store, error) {
	db, err := buntdb.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open store %s", path)
	}
	return &store{db: db}, nil
}

func (s *store) Close() error {
	return s.db.Close()
}

func setJSON(tx *buntdb.Tx, k string, v interface{}) error {
	raw, err := jsoniter.Marshal(v)
	if err != nil {
		return err
	}
	_, _, err = tx.Set(k, string(raw), nil)
	return err
}

func getJSON(tx *buntdb.Tx, k string, v interface{}) error {
	raw, err := tx.Get(k)
	if err == buntdb.ErrNotFound {
		return errNotFound
	}
	if err != nil {
		return err
	}
	return jsoniter.UnmarshalFromString(raw, v)
}

func (s *store) putContainer(c containerRecord) error {
	return s.db.Update(func(tx *buntdb.Tx) error {
		if c.NameGlobalScope {
			nk := key(collNames, c.Name)
			if _, err := tx.Get(nk); err == nil {
				return errNameConflict
			} else if err != buntdb.ErrNotFound {
				return err
			}
			if _, _, err := tx.Set(nk, c.ID, nil); err != nil {
				return err
			}
		}
		return setJSON(tx, key(collContainers, c.ID), c)
	})
}

func (s *store) getContainer(id string) (containerRecord, error) {
	var c containerRecord
	err := s.db.View(func(tx *buntdb.Tx) error {
		return getJSON(tx, key(collContainers, id), &c)
	})
	return c, err
}

func (s *store) putObject(o objectRecord, payload []byte) error {
	return s.db.Update(func(tx *buntdb.Tx) error {
		if _, err := tx.Get(key(collContainers, o.Container)); err == buntdb.ErrNotFound {
			return errNotFound
		} else if err != nil {
			return err
		}
		if err := setJSON(tx, key(collMeta, o.Container, o.ID), o); err != nil {
			return err
		}
		_, _, err := tx.Set(key(collPayloads, o.Container, o.ID), string(payload), nil)
		return err
	})
}

func (s *store) getObject(cid, oid string) (objectRecord, []byte, error) {
	var (
		o       objectRecord
		payload []byte
	)
	err := s.db.View(func(tx *buntdb.Tx) error {
		if err := getJSON(tx, key(collMeta, cid, oid), &o); err != nil {
			return err
		}
		raw, err := tx.Get(key(collPayloads, cid, oid))
		if err != nil {
			return err
		}
		payload = []byte(raw)
		return nil
	})
	return o, payload, err
}

func (s *store) deleteObject(cid, oid string) error {
	return s.db.Update(func(tx *buntdb.Tx) error {
		if _, err := tx.Delete(key(collMeta, cid, oid)); err == buntdb.ErrNotFound {
			return errNotFound
		} else if err != nil {
			return err
		}
		_, err := tx.Delete(key(collPayloads, cid, oid))
		if err == buntdb.ErrNotFound {
			return nil
		}
		return err
	})
}

// countObjects in a container
func (s *store) countObjects(cid string) (int, error) {
	var n int
	err := s.db.View(func(tx *buntdb.Tx) error {
		return tx.AscendKeys(key(collMeta, cid, "*"), func(_, _ string) bool {
			n++
			return true
		})
	})
	return n, err
}
