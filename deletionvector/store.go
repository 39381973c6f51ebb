package deletionvector

import (
	"context"
	"time"

	"github.com/spacemonkeygo/monkit/v3"
	"github.com/zeebo/errs"
	"go.etcd.io/bbolt"
	"go.uber.org/zap"
)

var mon = monkit.Package()

var (
	defaultTimeout = 1 * time.Second
	bucketName     = []byte("deletion-vectors")
)

const (
	// fileMode sets permissions so owner can read and write
	fileMode = 0600
)

// Store persists deletion vectors keyed by file path in a bbolt database.
type Store struct {
	log  *zap.Logger
	db   *bbolt.DB
	Path string
}

// OpenStore opens or creates the store at path.
func OpenStore(log *zap.Logger, path string) (*Store, error) {
	db, err := bbolt.Open(path, fileMode, &bbolt.Options{Timeout: defaultTimeout})
	if err != nil {
		return nil, Error.Wrap(err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		return nil, errs.Combine(Error.Wrap(err), Error.Wrap(db.Close()))
	}

	return &Store{
		log:  log.Named("deletion-vectors"),
		db:   db,
		Path: path,
	}, nil
}

// Get returns the vector of file. A file without a stored vector gets an
// empty one.
func (s *Store) Get(ctx context.Context, file string) (_ *Vector, err error) {
	defer mon.Task()(&ctx)(&err)

	v := New()
	err = s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketName).Get([]byte(file))
		if data == nil {
			return nil
		}
		return v.UnmarshalBinary(data)
	})
	if err != nil {
		return nil, Error.Wrap(err)
	}
	return v, nil
}

// Put replaces the vector of file. An empty vector removes the entry.
func (s *Store) Put(ctx context.Context, file string, v *Vector) (err error) {
	defer mon.Task()(&ctx)(&err)

	return Error.Wrap(s.db.Update(func(tx *bbolt.Tx) error {
		return put(tx, file, v)
	}))
}

// Merge adds the positions of v to the stored vector of file.
func (s *Store) Merge(ctx context.Context, file string, v *Vector) (err error) {
	defer mon.Task()(&ctx)(&err)

	if v.IsEmpty() {
		return nil
	}

	err = s.db.Update(func(tx *bbolt.Tx) error {
		merged := New()
		if data := tx.Bucket(bucketName).Get([]byte(file)); data != nil {
			if err := merged.UnmarshalBinary(data); err != nil {
				return err
			}
		}
		merged.Merge(v)

		s.log.Debug("merged deletion vector",
			zap.String("file", file),
			zap.Int64("added", v.Cardinality()),
			zap.Int64("total", merged.Cardinality()))
		return put(tx, file, merged)
	})
	return Error.Wrap(err)
}

// MergeAll merges every vector collected by b.
func (s *Store) MergeAll(ctx context.Context, b *Builder) (err error) {
	defer mon.Task()(&ctx)(&err)

	for _, file := range b.Files() {
		if err := s.Merge(ctx, file, b.Vector(file)); err != nil {
			return err
		}
	}
	return nil
}

// Files lists the files with a stored vector in key order.
func (s *Store) Files(ctx context.Context) (_ []string, err error) {
	defer mon.Task()(&ctx)(&err)

	var files []string
	err = s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketName).ForEach(func(k, _ []byte) error {
			files = append(files, string(k))
			return nil
		})
	})
	return files, Error.Wrap(err)
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return Error.Wrap(s.db.Close())
}

func put(tx *bbolt.Tx, file string, v *Vector) error {
	bucket := tx.Bucket(bucketName)
	if v.IsEmpty() {
		return bucket.Delete([]byte(file))
	}
	data, err := v.MarshalBinary()
	if err != nil {
		return err
	}
	return bucket.Put([]byte(file), data)
}
