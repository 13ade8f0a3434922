package artifact

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/dotview/pkg/cache"
	"github.com/matzehuels/dotview/pkg/errors"
	"github.com/matzehuels/dotview/pkg/retry"
)

// GridFSConfig configures a [GridFS] store.
type GridFSConfig struct {
	URI      string // defaults to mongodb://localhost:27017
	Database string // defaults to "dotview"
	Bucket   string // defaults to "renders"
}

// GridFS stores artifacts in a MongoDB GridFS bucket.
type GridFS struct {
	client *mongo.Client
	bucket *gridfs.Bucket
}

// gridFile mirrors the GridFS files collection document.
type gridFile struct {
	ID         primitive.ObjectID `bson:"_id"`
	Length     int64              `bson:"length"`
	UploadDate time.Time          `bson:"uploadDate"`
	Filename   string             `bson:"filename"`
	Metadata   struct {
		Format string `bson:"format"`
		Digest string `bson:"digest"`
	} `bson:"metadata"`
}

func (f gridFile) artifact() Artifact {
	return Artifact{
		ID:      f.ID.Hex(),
		Name:    f.Filename,
		Format:  f.Metadata.Format,
		Size:    f.Length,
		Digest:  f.Metadata.Digest,
		Created: f.UploadDate.UTC(),
	}
}

// NewGridFS connects to MongoDB and verifies the connection with a ping.
func NewGridFS(ctx context.Context, cfg GridFSConfig) (*GridFS, error) {
	if cfg.URI == "" {
		cfg.URI = "mongodb://localhost:27017"
	}
	if cfg.Database == "" {
		cfg.Database = "dotview"
	}
	if cfg.Bucket == "" {
		cfg.Bucket = "renders"
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	ping := func() error { return retry.Transient(client.Ping(ctx, nil)) }
	if err := retry.Do(ctx, ping); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}
	bucket, err := gridfs.NewBucket(client.Database(cfg.Database), options.GridFSBucket().SetName(cfg.Bucket))
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("open gridfs bucket %s: %w", cfg.Bucket, err)
	}
	return &GridFS{client: client, bucket: bucket}, nil
}

func (s *GridFS) Put(ctx context.Context, name, format string, data []byte) (Artifact, error) {
	if err := s.applyDeadline(ctx); err != nil {
		return Artifact{}, err
	}
	digest := cache.Hash(data)
	opts := options.GridFSUpload().SetMetadata(bson.D{
		{Key: "format", Value: format},
		{Key: "digest", Value: digest},
	})
	id, err := s.bucket.UploadFromStream(name, bytes.NewReader(data), opts)
	if err != nil {
		return Artifact{}, errors.Wrap(errors.ErrCodeIO, err, "upload %s", name)
	}
	return Artifact{
		ID:      id.Hex(),
		Name:    name,
		Format:  format,
		Size:    int64(len(data)),
		Digest:  digest,
		Created: time.Now().UTC(),
	}, nil
}

func (s *GridFS) Get(ctx context.Context, id string) ([]byte, Artifact, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, Artifact{}, errors.New(errors.ErrCodeNotFound, "artifact %q not found", id)
	}
	if err := s.applyDeadline(ctx); err != nil {
		return nil, Artifact{}, err
	}

	files, err := s.find(ctx, bson.D{{Key: "_id", Value: oid}}, nil)
	if err != nil {
		return nil, Artifact{}, err
	}
	if len(files) == 0 {
		return nil, Artifact{}, errors.New(errors.ErrCodeNotFound, "artifact %q not found", id)
	}

	var buf bytes.Buffer
	if _, err := s.bucket.DownloadToStream(oid, &buf); err != nil {
		if stderrors.Is(err, gridfs.ErrFileNotFound) {
			return nil, Artifact{}, errors.New(errors.ErrCodeNotFound, "artifact %q not found", id)
		}
		return nil, Artifact{}, errors.Wrap(errors.ErrCodeIO, err, "download %s", id)
	}
	return buf.Bytes(), files[0].artifact(), nil
}

func (s *GridFS) List(ctx context.Context) ([]Artifact, error) {
	if err := s.applyDeadline(ctx); err != nil {
		return nil, err
	}
	files, err := s.find(ctx, bson.D{}, options.GridFSFind().SetSort(bson.D{{Key: "uploadDate", Value: -1}}))
	if err != nil {
		return nil, err
	}
	out := make([]Artifact, len(files))
	for i, f := range files {
		out[i] = f.artifact()
	}
	return out, nil
}

func (s *GridFS) Close() error {
	return s.client.Disconnect(context.Background())
}

func (s *GridFS) find(ctx context.Context, filter bson.D, opts *options.GridFSFindOptions) ([]gridFile, error) {
	var findOpts []*options.GridFSFindOptions
	if opts != nil {
		findOpts = append(findOpts, opts)
	}
	cur, err := s.bucket.Find(filter, findOpts...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "query gridfs")
	}
	var files []gridFile
	if err := cur.All(ctx, &files); err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "read gridfs files")
	}
	return files, nil
}

// applyDeadline carries ctx's deadline to the bucket, which predates
// context support.
func (s *GridFS) applyDeadline(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	deadline, _ := ctx.Deadline()
	if err := s.bucket.SetReadDeadline(deadline); err != nil {
		return err
	}
	return s.bucket.SetWriteDeadline(deadline)
}

var _ Store = (*GridFS)(nil)
