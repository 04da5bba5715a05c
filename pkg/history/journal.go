package history

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/sextant-dev/sextant/pkg/router"
)

const bucketNavigations = "navigations"

// Entry is one committed navigation as stored in the journal.
type Entry struct {
	// Seq is the journal sequence number, monotonic and gap-free.
	Seq uint64 `json:"seq"`

	// ID is the router's navigation record id.
	ID int64 `json:"id"`

	// URL is the committed, post-redirect URL.
	URL string `json:"url"`

	// Time is the commit time.
	Time time.Time `json:"time"`
}

// Journal is an append-only record of committed navigations backed by a
// bolt database. It is safe for concurrent use.
type Journal struct {
	db *bolt.DB
}

// OpenJournal opens or creates the journal database at path.
func OpenJournal(path string) (*Journal, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("history: open journal: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketNavigations))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("history: init journal: %w", err)
	}
	return &Journal{db: db}, nil
}

// Close closes the underlying database.
func (j *Journal) Close() error {
	return j.db.Close()
}

// Append records one committed navigation and returns its sequence number.
func (j *Journal) Append(id int64, url string, at time.Time) (uint64, error) {
	var seq uint64
	err := j.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketNavigations))
		var err error
		seq, err = b.NextSequence()
		if err != nil {
			return err
		}
		value, err := json.Marshal(Entry{Seq: seq, ID: id, URL: url, Time: at})
		if err != nil {
			return err
		}
		return b.Put(marshalSeq(seq), value)
	})
	if err != nil {
		return 0, fmt.Errorf("history: append: %w", err)
	}
	return seq, nil
}

// Entries returns all journal entries with sequence numbers in [from, upto].
// A zero upto means no upper bound.
func (j *Journal) Entries(from, upto uint64) ([]Entry, error) {
	var entries []Entry
	err := j.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketNavigations))
		c := b.Cursor()
		for k, v := c.Seek(marshalSeq(from)); k != nil; k, v = c.Next() {
			seq := unmarshalSeq(k)
			if upto != 0 && seq > upto {
				return nil
			}
			var e Entry
			if err := json.Unmarshal(v, &e); err != nil {
				return fmt.Errorf("corrupt entry %d: %w", seq, err)
			}
			entries = append(entries, e)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("history: entries: %w", err)
	}
	return entries, nil
}

// Last returns the most recent entry. ok is false when the journal is empty.
func (j *Journal) Last() (entry Entry, ok bool, err error) {
	err = j.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketNavigations))
		k, v := b.Cursor().Last()
		if k == nil {
			return nil
		}
		ok = true
		return json.Unmarshal(v, &entry)
	})
	if err != nil {
		return Entry{}, false, fmt.Errorf("history: last: %w", err)
	}
	return entry, ok, nil
}

// Len returns the number of committed navigations recorded so far.
func (j *Journal) Len() (uint64, error) {
	var n uint64
	err := j.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket([]byte(bucketNavigations)).Sequence()
		return nil
	})
	return n, err
}

// Observer returns a router event observer that appends an entry for every
// navigation that reaches the succeeded stage. Append failures are reported
// through onErr when it is non-nil and otherwise dropped; the navigation
// itself is never failed by its journal.
func (j *Journal) Observer(onErr func(error)) router.Observer {
	return func(ev router.Event) {
		if ev.Stage != router.StageSucceeded {
			return
		}
		if _, err := j.Append(ev.ID, ev.FinalURL, ev.At); err != nil && onErr != nil {
			onErr(err)
		}
	}
}

func marshalSeq(seq uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, seq)
	return b
}

func unmarshalSeq(key []byte) uint64 {
	return binary.BigEndian.Uint64(key)
}
