package mongo

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/garikaib/rates-scrapper/internal/application"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const defaultDialTimeout = 5 * time.Second

// InjectCredentials overlays user/password onto a connection URI, replacing
// any userinfo already present. An empty user or password leaves the URI
// untouched.
func InjectCredentials(uri, user, pass string) (string, error) {
	if user == "" || pass == "" {
		return uri, nil
	}
	u, err := url.Parse(uri)
	if err != nil {
		return "", fmt.Errorf("mongo: parse uri: %w", err)
	}
	u.User = url.UserPassword(user, pass)
	return u.String(), nil
}

// Dialer opens one scoped connection to the shared snapshot collection per
// sync step. The connection is acquired when the step starts and released
// when it ends; no handle is cached across runs.
type Dialer struct {
	URI        string
	Database   string
	Collection string
	Timeout    time.Duration
	Log        *zap.Logger
}

var _ application.SnapshotDialer = (*Dialer)(nil)

func (d *Dialer) timeout() time.Duration {
	if d.Timeout <= 0 {
		return defaultDialTimeout
	}
	return d.Timeout
}

func (d *Dialer) logger() *zap.Logger {
	if d.Log == nil {
		return zap.NewNop()
	}
	return d.Log
}

// Dial connects and pings the deployment. The returned release func
// disconnects; it must be called on every path.
func (d *Dialer) Dial(ctx context.Context) (application.SnapshotSession, func(), error) {
	if d.URI == "" {
		return nil, nil, errors.New("mongo: uri not configured")
	}
	opts := options.Client().ApplyURI(d.URI).SetServerSelectionTimeout(d.timeout())
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("mongo: connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("mongo: ping: %w", err)
	}
	d.logger().Info("mongo.connected", zap.String("database", d.Database))

	release := func() {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout())
		defer cancel()
		if err := client.Disconnect(ctx); err != nil {
			d.logger().Warn("mongo.disconnect_failed", zap.Error(err))
		}
	}
	session := &Session{
		coll: client.Database(d.Database).Collection(d.Collection),
		log:  d.logger(),
	}
	return session, release, nil
}
