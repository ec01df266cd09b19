package repository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// ErrStreamClosed is reported when a change stream ends without an error
// while nobody asked it to stop, as after an invalidate event.
var ErrStreamClosed = errors.New("change stream closed")

// changeStream is the part of *mongo.ChangeStream the pump reads.
type changeStream interface {
	Next(ctx context.Context) bool
	Err() error
	Close(ctx context.Context) error
}

// Subscribe opens a change stream on coll and calls onChange for every
// event. If the stream dies after it started, onError gets the cause once;
// cancelling ctx or calling the returned func stops the stream quietly.
func Subscribe(ctx context.Context, coll *mongo.Collection, onChange func(), onError func(error)) (func(), error) {
	watchCtx, cancel := context.WithCancel(ctx)

	stream, err := coll.Watch(watchCtx, mongo.Pipeline{})
	if err != nil {
		cancel()
		return nil, err
	}

	go pump(watchCtx, stream, coll.Name(), onChange, onError)
	return cancel, nil
}

func pump(ctx context.Context, stream changeStream, name string, onChange func(), onError func(error)) {
	defer stream.Close(context.Background())
	for stream.Next(ctx) {
		onChange()
	}
	if ctx.Err() != nil {
		return
	}

	err := stream.Err()
	if err == nil {
		err = ErrStreamClosed
	}
	zap.L().Warn("change stream stopped",
		zap.String("collection", name),
		zap.Error(err))
	if onError != nil {
		onError(err)
	}
}
